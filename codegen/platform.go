package codegen

// Platform selects the target-specific section names and external-symbol
// conventions spec.md documents for Linux vs. macOS. Kept as a Go value
// threaded through the Generator rather than a compile-time #ifdef, per
// spec.md §9's rule that module-scope state becomes explicit fields.
type Platform int

const (
	Linux Platform = iota
	Darwin
)

// BSSDirective returns the section directive for zero-initialized
// global storage.
func (p Platform) BSSDirective() string {
	if p == Darwin {
		return ".section __DATA,__bss"
	}
	return ".bss"
}

// RODataDirective returns the section directive for the format-string
// and string-literal table.
func (p Platform) RODataDirective() string {
	if p == Darwin {
		return ".section __TEXT,__cstring"
	}
	return ".rodata"
}

// mainLabel is the label under which the generator emits the
// synthesized entry point. The generator always calls libc symbols and
// emits "main" unprefixed; DeclareSymbols adds whatever aliasing the
// platform needs to resolve those references against the real symbols.
const mainLabel = "main"

// libcSymbols is every external C runtime symbol the emitted assembly
// calls, in the order spec.md documents them.
var libcSymbols = []string{"printf", "putchar", "puts", "strtol", "exit"}

// DeclareSymbols emits whatever trailing directives are needed so the
// bare names used throughout the generated code (main, printf, putchar,
// puts, strtol, exit) resolve to the right external symbols. On Linux it
// emits nothing: the emitted code already calls libc functions by their
// real names, and the .global for main comes from GlobalDirective.
// macOS Mach-O names every C symbol with a leading underscore, so every
// libc call site is aliased to its underscore form, and "_main" is set
// to the defined "main" label (GlobalDirective exports "_main").
func (p Platform) DeclareSymbols(e *Emitter) {
	if p == Linux {
		return
	}
	for _, sym := range libcSymbols {
		e.Directive(".set %s, _%s", sym, sym)
	}
	e.Directive(".set _%s, %s", mainLabel, mainLabel)
}

// GlobalDirective returns the ".global" line the generator emits ahead
// of the main label.
func (p Platform) GlobalDirective() string {
	if p == Darwin {
		return ".global _" + mainLabel
	}
	return ".global " + mainLabel
}
