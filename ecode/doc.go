// Package ecode defines the business codes returned by the HTTP surface and
// their mapping to HTTP statuses.
//
//	resp.Fail(w, &resp.Exception{
//	    Status:  ecode.ToHTTPStatus(ecode.NotFound),
//	    Code:    ecode.NotFound,
//	    Message: ecode.Text(ecode.NotFound),
//	})
package ecode
