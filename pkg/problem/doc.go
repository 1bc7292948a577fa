// Package problem implements RFC 7807 Problem Details for HTTP APIs.
//
// A Problem is an immutable value: it is built once with New and every With*
// method returns a modified copy. Problem implements error, so handlers can
// return one directly and the HTTP layer writes it unchanged.
//
// Encode and Decode convert between a Problem and its application/problem+json
// form. Fields are always written in the order type, title, status, detail,
// instance, followed by extension members sorted by key. Absent optional
// fields are omitted.
//
//	p, err := problem.New(
//		problem.WithType("https://errors.example.com/out-of-stock"),
//		problem.WithTitle("Out of Stock"),
//		problem.WithStatus(http.StatusConflict),
//		problem.WithExtension("sku", "A-100"),
//	)
package problem
