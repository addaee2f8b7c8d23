package breaking

import (
	"fmt"

	"github.com/platinummonkey/protosign/pkg/canonical"
)

// checkFileNoDelete exists for catalog parity: the engine evaluates one
// previous/current pair at a time, so a deleted file never reaches a
// rule function. Corpus-level drivers enforce this at the pair boundary.
func checkFileNoDelete(prev, curr *canonical.File, ctx *Context) []Change {
	return nil
}

func checkFileSamePackage(prev, curr *canonical.File, ctx *Context) []Change {
	if prev.Package == curr.Package {
		return nil
	}
	return []Change{change(KindFile, curr.Package, fmt.Sprintf(
		"File package changed from %s to %s.", displayValue(prev.Package), displayValue(curr.Package)))}
}

func checkFileSameSyntax(prev, curr *canonical.File, ctx *Context) []Change {
	prevSyntax, currSyntax := syntaxDisplay(prev), syntaxDisplay(curr)
	if prevSyntax == currSyntax {
		return nil
	}
	return []Change{change(KindFile, curr.Package, fmt.Sprintf(
		"File syntax changed from %q to %q.", prevSyntax, currSyntax))}
}

func syntaxDisplay(f *canonical.File) string {
	if f.Syntax == "editions" && f.Edition != "" {
		return "editions/" + f.Edition
	}
	return f.Syntax
}

// fileStringOption builds a same-property check over one string-valued
// file option.
func fileStringOption(option string, get func(canonical.FileOptions) string) RuleFunc {
	return func(prev, curr *canonical.File, ctx *Context) []Change {
		prevValue, currValue := get(prev.Options), get(curr.Options)
		if prevValue == currValue {
			return nil
		}
		return []Change{change(KindFile, curr.Package, fmt.Sprintf(
			"File option %q changed from %s to %s.", option, displayValue(prevValue), displayValue(currValue)))}
	}
}

// fileBoolOption builds a same-property check over one bool-valued file
// option.
func fileBoolOption(option string, get func(canonical.FileOptions) bool) RuleFunc {
	return func(prev, curr *canonical.File, ctx *Context) []Change {
		prevValue, currValue := get(prev.Options), get(curr.Options)
		if prevValue == currValue {
			return nil
		}
		return []Change{change(KindFile, curr.Package, fmt.Sprintf(
			"File option %q changed from %v to %v.", option, prevValue, currValue))}
	}
}

var (
	checkFileSameJavaPackage          = fileStringOption("java_package", func(o canonical.FileOptions) string { return o.JavaPackage })
	checkFileSameJavaOuterClassname   = fileStringOption("java_outer_classname", func(o canonical.FileOptions) string { return o.JavaOuterClassname })
	checkFileSameGoPackage            = fileStringOption("go_package", func(o canonical.FileOptions) string { return o.GoPackage })
	checkFileSameObjcClassPrefix      = fileStringOption("objc_class_prefix", func(o canonical.FileOptions) string { return o.ObjcClassPrefix })
	checkFileSameCsharpNamespace      = fileStringOption("csharp_namespace", func(o canonical.FileOptions) string { return o.CsharpNamespace })
	checkFileSameSwiftPrefix          = fileStringOption("swift_prefix", func(o canonical.FileOptions) string { return o.SwiftPrefix })
	checkFileSamePhpClassPrefix       = fileStringOption("php_class_prefix", func(o canonical.FileOptions) string { return o.PhpClassPrefix })
	checkFileSamePhpNamespace         = fileStringOption("php_namespace", func(o canonical.FileOptions) string { return o.PhpNamespace })
	checkFileSamePhpMetadataNamespace = fileStringOption("php_metadata_namespace", func(o canonical.FileOptions) string { return o.PhpMetadataNamespace })
	checkFileSameRubyPackage          = fileStringOption("ruby_package", func(o canonical.FileOptions) string { return o.RubyPackage })

	checkFileSameJavaMultipleFiles   = fileBoolOption("java_multiple_files", func(o canonical.FileOptions) bool { return o.JavaMultipleFiles })
	checkFileSameJavaStringCheckUTF8 = fileBoolOption("java_string_check_utf8", func(o canonical.FileOptions) bool { return o.JavaStringCheckUTF8 })
	checkFileSameCcGenericServices   = fileBoolOption("cc_generic_services", func(o canonical.FileOptions) bool { return o.CcGenericServices })
	checkFileSameJavaGenericServices = fileBoolOption("java_generic_services", func(o canonical.FileOptions) bool { return o.JavaGenericServices })
	checkFileSamePyGenericServices   = fileBoolOption("py_generic_services", func(o canonical.FileOptions) bool { return o.PyGenericServices })
)

func checkFileSameOptimizeFor(prev, curr *canonical.File, ctx *Context) []Change {
	prevMode, currMode := optimizeForDisplay(prev.Options.OptimizeFor), optimizeForDisplay(curr.Options.OptimizeFor)
	if prevMode == currMode {
		return nil
	}
	return []Change{change(KindFile, curr.Package, fmt.Sprintf(
		"File option \"optimize_for\" changed from %q to %q.", prevMode, currMode))}
}

func optimizeForDisplay(v string) string {
	if v == "" {
		return "SPEED"
	}
	return v
}

func checkFileSameCcEnableArenas(prev, curr *canonical.File, ctx *Context) []Change {
	prevEnabled := prev.Options.CcEnableArenas == nil || *prev.Options.CcEnableArenas
	currEnabled := curr.Options.CcEnableArenas == nil || *curr.Options.CcEnableArenas
	if prevEnabled == currEnabled {
		return nil
	}
	return []Change{change(KindFile, curr.Package, fmt.Sprintf(
		"File option \"cc_enable_arenas\" changed from %v to %v.", prevEnabled, currEnabled))}
}

// checkPackageNoDelete is trivially satisfied at pair granularity; the
// catalog keeps it so configurations naming it stay valid.
func checkPackageNoDelete(prev, curr *canonical.File, ctx *Context) []Change {
	return nil
}
