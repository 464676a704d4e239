// Package errors provides structured, actionable error messages for the
// reactbench tool.
//
// Every error carries a code (e.g. "R100") that maps to a short message, a
// category and a longer explanation. Call sites add details and a hint:
//
//	err := errors.New("R110").
//	    WithDetail(`scenario "tree" is not registered`).
//	    WithSuggestion("Run 'reactbench run --list' to see available scenarios")
//
//	errors.Print(os.Stderr, err)
//	// Output:
//	// ERROR R110: Unknown scenario
//	//
//	//   scenario "tree" is not registered
//	//
//	//   Hint: Run 'reactbench run --list' to see available scenarios
//
// The engine itself (pkg/reactive) does not use this package: it reports
// misuse with sentinel errors.
package errors
