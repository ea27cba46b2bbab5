// Package classifier maps failed provider responses to classified errors.
//
// Extraction is a tolerant byte scan for the first <Code> and <Message>
// elements, so HTML error pages and truncated bodies never cause a second
// failure. The last dot-separated segment of the code is looked up in a
// per-service Table; everything the table does not name is surfaced as an
// UNCLASSIFIED error carrying the provider code and message verbatim.
//
//	c := classifier.New("rds", classifier.Table{
//	    "DBInstanceNotFound":            errors.KindNotFound,
//	    "DBParameterGroupAlreadyExists": errors.KindIdentifierTaken,
//	})
//	err := c.Classify(resp.StatusCode, body)
package classifier
