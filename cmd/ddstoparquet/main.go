package main

// ddstoparquet converts an extracted data-dictionary CSV into a
// parquet file with one BYTE_ARRAY column per dictionary field,
// giving downstream consumers a columnar artifact.  Missing values
// are written as parquet nulls.

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	nbdc "github.com/ReproNim/ABCD-ReproSchema"
)

func main() {

	infile := flag.String("in", "", "Path to the data-dictionary CSV")
	outfile := flag.String("out", "", "Path where the output parquet file is written")
	flag.Parse()

	if *infile == "" || *outfile == "" {
		io.WriteString(os.Stderr, "'in' and 'out' are required arguments\n")
		os.Exit(1)
	}

	f, err := os.Open(*infile)
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("%v\n", err))
		os.Exit(1)
	}
	defer f.Close()

	rdr := nbdc.NewCSVReader(f)
	data, err := rdr.Read(-1)
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("%v\n", err))
		os.Exit(1)
	}

	md := make([]string, len(data))
	for j, c := range data {
		md[j] = fmt.Sprintf("name=%s, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY", c.Name)
	}

	fw, err := local.NewLocalFileWriter(*outfile)
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("can't create %s: %v\n", *outfile, err))
		os.Exit(1)
	}

	pw, err := writer.NewCSVWriter(md, fw, 4)
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("can't create parquet writer: %v\n", err))
		os.Exit(1)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	ncol := len(data)
	cols := make([][]string, ncol)
	missing := make([][]bool, ncol)
	nrow := 0
	for j := range data {
		s := data[j].ToString()
		x, miss, err := s.AsStringSlice()
		if err != nil {
			panic(err)
		}
		cols[j] = x
		missing[j] = miss
		if len(x) > nrow {
			nrow = len(x)
		}
	}

	rec := make([]*string, ncol)
	for i := 0; i < nrow; i++ {
		for j := 0; j < ncol; j++ {
			if i >= len(cols[j]) || (missing[j] != nil && missing[j][i]) {
				rec[j] = nil
			} else {
				rec[j] = &cols[j][i]
			}
		}
		if err := pw.WriteString(rec); err != nil {
			os.Stderr.WriteString(fmt.Sprintf("write error: %v\n", err))
			os.Exit(1)
		}
	}

	if err := pw.WriteStop(); err != nil {
		os.Stderr.WriteString(fmt.Sprintf("WriteStop error: %v\n", err))
		os.Exit(1)
	}
	fw.Close()

	fmt.Printf("wrote %d records to %s\n", nrow, *outfile)
}
