// Package testutil provides test infrastructure for cloudkit clients.
//
// ProviderServer is a scripted fake provider endpoint. Tests queue the
// responses it should give (or connections it should drop), point a client
// at it, and then inspect the form bodies it received.
//
//	func TestDelete(t *testing.T) {
//	    srv := testutil.NewProviderServer("rds")
//	    testutil.T(t).Setup(srv)
//
//	    srv.DropConnection().Respond(200, deleteResponse)
//	    // ... issue the request ...
//	    if srv.Hits() != 2 {
//	        t.Fatal("expected one retry")
//	    }
//	}
//
// ProviderServer implements TestComponent, which extends the component
// lifecycle with Reset so one server can be reused across subtests.
package testutil
