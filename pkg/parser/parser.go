// Package parser turns .proto source into resolved file descriptors
// using protocompile. Type references come back fully qualified and
// editions features materialized, which is everything the normalizer
// needs; nothing downstream re-resolves names.
package parser

import (
	"context"
	"fmt"

	"github.com/bufbuild/protocompile"
	"github.com/bufbuild/protocompile/protoutil"
	"google.golang.org/protobuf/types/descriptorpb"
)

// ParseError wraps a lexical, syntactic, or resolution failure from the
// compiler. No rules run when either side of a comparison fails to
// parse.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Result is a parsed file: the resolved descriptor plus a best-effort
// line index for diagnostics.
type Result struct {
	Path      string
	File      *descriptorpb.FileDescriptorProto
	Positions *PositionIndex
}

// Parse compiles a single .proto source string. Well-known
// google/protobuf imports resolve from the compiler's standard set;
// any other import must be supplied via ParseWithImports.
func Parse(path, content string) (*Result, error) {
	return ParseWithImports(path, content, nil)
}

// ParseWithImports compiles a .proto source string with additional
// import sources keyed by import path.
func ParseWithImports(path, content string, imports map[string]string) (*Result, error) {
	sources := map[string]string{path: content}
	for importPath, importContent := range imports {
		if importPath != path {
			sources[importPath] = importContent
		}
	}

	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			Accessor: protocompile.SourceAccessorFromMap(sources),
		}),
		SourceInfoMode: protocompile.SourceInfoStandard,
	}

	files, err := compiler.Compile(context.Background(), path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if len(files) == 0 {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("no files compiled")}
	}

	return &Result{
		Path:      path,
		File:      protoutil.ProtoFromFileDescriptor(files[0]),
		Positions: IndexPositions(content),
	}, nil
}
