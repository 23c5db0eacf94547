// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package generate wraps the external TPC-DS toolkit (dsdgen, dsqgen) for
// chunked data generation and query-set generation. The toolkit is always an
// opaque subprocess, run either as a docker image or a local binary.
package generate

import (
	"fmt"
	"strconv"
)

// Options configures a generation run.
type Options struct {
	// Scale is the TPC-DS scale factor in gigabytes.
	Scale int
	// Chunks is the number of parallel dsdgen children (the -parallel value).
	Chunks int
	// Workers caps how many chunks generate concurrently; <=1 means one at a
	// time. Each chunk is still a full dsdgen process.
	Workers int
	// OutputDir receives the generated .dat files.
	OutputDir string
	// Image is the docker image holding the toolkit. When set, every
	// invocation is "docker run --rm -v OutputDir:/data IMAGE ...".
	Image string
	// DsdgenPath is a local dsdgen binary, used when Image is empty.
	DsdgenPath string
	// DistsPath points dsdgen at its distribution definitions file
	// (tpcds.idx); empty means the tool's default lookup.
	DistsPath string
}

// containerDataDir is where the output directory is mounted inside the
// toolkit container.
const containerDataDir = "/data"

// ChunkArgs builds the dsdgen argument vector for one chunk of a parallel
// run. chunk is 1-based. A single-chunk run omits -parallel/-child, matching
// how dsdgen names its output files in that mode.
func ChunkArgs(scale, chunk, total int, dir string) []string {
	args := []string{
		"-scale", strconv.Itoa(scale),
		"-delimiter", "|",
		"-terminate", "N",
		"-force", "Y",
		"-dir", dir,
	}
	if total > 1 {
		args = append(args,
			"-parallel", strconv.Itoa(total),
			"-child", strconv.Itoa(chunk),
		)
	}
	return args
}

// QueryOptions configures a dsqgen query-set generation run.
type QueryOptions struct {
	// TemplatesDir holds the query templates and templates.lst.
	TemplatesDir string
	// Dialect selects the dialect substitution file (e.g. "netezza").
	Dialect string
	// OutputDir receives the generated query stream.
	OutputDir string
	// Scale is the scale factor the templates are parameterized for.
	Scale int
	// Image and DsqgenPath mirror Options: docker image first, local binary
	// when Image is empty.
	Image      string
	DsqgenPath string
}

// QueryArgs builds the dsqgen argument vector. dsqgen runs once for the
// whole query set rather than per chunk.
func QueryArgs(o QueryOptions, templatesDir, outputDir string) []string {
	return []string{
		"-directory", templatesDir,
		"-input", templatesDir + "/templates.lst",
		"-dialect", o.Dialect,
		"-scale", strconv.Itoa(o.Scale),
		"-output_dir", outputDir,
	}
}

// dockerArgs wraps a toolkit invocation in docker run, mounting hostDir at
// the container data directory.
func dockerArgs(image, hostDir, tool string, toolArgs []string) []string {
	args := []string{
		"run", "--rm",
		"-v", fmt.Sprintf("%s:%s", hostDir, containerDataDir),
		image,
		tool,
	}
	return append(args, toolArgs...)
}
