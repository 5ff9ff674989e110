// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The central type is Chain, a conversational retrieval pipeline:
// condense the follow-up question, retrieve passages, answer from them.
package services
