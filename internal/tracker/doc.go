// Package tracker defines the production-tracking collaborator contract:
// entity link records, query filters, and the Service interface the
// resolution engine queries for entity fields. The HTTP client behind
// Service is out of scope for the toolkit core; tests use a fake.
package tracker
