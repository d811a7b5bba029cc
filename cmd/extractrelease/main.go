package main

// extractrelease pulls one release's data dictionary out of an NBDC
// study archive and writes it as CSV.  The study is fixed to ABCD;
// release keys in the archive may be bare ("6.0"), study-prefixed
// ("abcd_6.0"), or v-prefixed ("v6.0").

import (
	"fmt"
	"os"

	nbdc "github.com/ReproNim/ABCD-ReproSchema"
)

const study = "abcd"

func main() {

	if len(os.Args) != 4 {
		fmt.Printf("usage: %s archive release outfile\n", os.Args[0])
		fmt.Printf("  archive  path to the lst_dds archive file\n")
		fmt.Printf("  release  release version, e.g. 6.0\n")
		fmt.Printf("  outfile  path for the output CSV\n")
		os.Exit(1)
	}

	if err := nbdc.ExtractRelease(os.Args[1], study, os.Args[2], os.Args[3]); err != nil {
		os.Stderr.WriteString(fmt.Sprintf("%v\n", err))
		os.Exit(1)
	}
}
