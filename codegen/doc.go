// Package codegen lowers a bound, simplified VSL AST to x86-64 assembly
// text on the System V AMD64 ABI, with a conditional macOS variant.
//
// Output layout:
//
//	section			contents
//	-------			--------
//	.rodata/__cstring	intout "%ld", strout "%s", errout, then one
//				stringN per interned literal, in order
//	.bss/__DATA,__bss	one zeroed quadword per global variable,
//				8*N zeroed bytes per global array
//	.text			each function in source order, then the
//				synthesized main, then the safe_printf
//				trampoline, then platform symbol aliases
//
// Register discipline: every expression evaluates to %rax, with %rcx as
// the paired scratch register for one-slot stack spills. There is no
// general register allocator; this mirrors the evaluator-stack
// discipline of the source the core was distilled from.
//
// Label conventions:
//
//	.name		user function labels and global variable/array storage
//	stringN		interned string literals
//	THENn ELSEn ENDIFn	if-statement control flow, shared counter per if
//	WHILEn ENDWHILEn	while-statement control flow, shared counter per while
//
// Platform differences (see Platform) are confined to section directive
// names, the .global line ahead of main (".global _main" on macOS), and a
// trailing block of .set aliases mapping the bare libc names used
// throughout code generation (printf, putchar, puts, strtol, exit) to
// their Mach-O underscore-prefixed equivalents and "_main" to "main"; the
// generator itself never branches on platform outside of that.
package codegen
