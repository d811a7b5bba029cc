package nbdc

/*

Package nbdc extracts versioned data-dictionary tables from an NBDC
study archive and writes them as CSV, the first step of the
ABCD-ReproSchema conversion pipeline.

An archive holds a two-level keyed structure: study identifier (e.g.
"abcd", "hbcd") to release table, then release-version key to release
entry.  A release entry is either the data dictionary itself or a
small wrapper mapping holding it under one of a few well-known keys.
Release keys follow several naming conventions ("6.0", "abcd_6.0",
"v6.0"); the resolver tries each in turn.

The dictionary is a rectangular collection of named columns, held as
Series values: a typed data slice plus a mask for missing values.
Cells may themselves be lists of values, which are joined into a
single delimited text field on output.  Archives written from deferred
table views sometimes deserialize with zero-length columns despite a
positive declared row count; the Materialize method repairs such
tables with a sequence of escalating recovery strategies before any
data flows downstream.

Package nbdc also includes a chunked, type-inferring CSV reader used
to check written output and to feed the parquet export tool.

*/
