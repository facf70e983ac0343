// Package action defines the data exchanged with the agent orchestrator: the
// inbound Invocation, its Parameters, and the tagged Error used to carry a
// failure's kind, status code, and upstream details through the pipeline.
package action
