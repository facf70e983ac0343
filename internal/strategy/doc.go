// Package strategy implements the handlers an action path is routed to.
// Every strategy follows the same contract: validate the parameters, build a
// backend query, fetch from the Collaborator, and normalize the result into
// the shape returned to the orchestrator.
//
//   - Directory lookup: resolves one person's record by name
//   - Parameterized search: free-text search whose payload refinements and
//     content types come from a per-type profile (policy, developer, crew)
//
// Validation failures are returned before the Collaborator is called.
package strategy
