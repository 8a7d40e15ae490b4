// Package http implements the HTTP request handlers of the analysis
// service. It is a thin layer between transport and business logic:
// handlers parse and validate requests, delegate to the service layer,
// and format responses.
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Engine
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/fields/missing",
//	    "title": "Required Columns Missing",
//	    "status": 422,
//	    "detail": "Required data columns could not be detected",
//	    "instance": "/api/analyses"
//	}
//
// # Testing
//
// Handlers are tested with httptest against the real service layer,
// uploading fixture spreadsheets into a temporary directory.
package http
