package functions

// registerCoreFunctions populates r with every built-in in spec.md's
// function table, split by concern across fn_*.go the way the original
// crate's single functions.rs is split here into numeric/string/array/
// object/higher-order/misc groups.
func registerCoreFunctions(r *Registry) {
	registerNumericFunctions(r)
	registerStringFunctions(r)
	registerArrayFunctions(r)
	registerObjectFunctions(r)
	registerHigherOrderFunctions(r)
	registerMiscFunctions(r)
}
