// Package essayist provides a human-in-the-loop essay writing workflow.
//
// essayist models essay production as a resumable phase machine: a request
// is classified, analyzed, planned, researched, drafted, critiqued and
// finalized, with the session record persisted between invocations. Three
// checkpoints interrupt the pipeline so a human can answer clarification
// questions, review the plan and review the draft; each can be answered on
// a later call or skipped up front.
//
// Core components include:
//   - Driver: loads a session, merges the caller's input, advances the
//     phase machine and persists the outcome
//   - Stages: the per-phase bodies that invoke the language model and the
//     research searcher
//   - Checkpoints: the gates where a session parks waiting for human input
//   - Record: the full session state, stored in memory, in an expiring
//     cache, or in SQLite
//
// A minimal run looks like:
//
//	driver := essayist.NewDriver(store.NewMemoryStore(),
//		essayist.WithGenerator(gen),
//		essayist.WithSearcher(searcher))
//	rec, err := driver.Run(ctx, essayist.Request{UserInput: "write about compost"})
//	// rec.Halted() until the checkpoints are answered or skipped
package essayist
