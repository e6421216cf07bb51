// Package procsim simulates the bookkeeping of a priority-preemptive process
// scheduler: process creation, forking and termination, strict-priority
// round-robin selection across ready queues, counting semaphores and
// blocking message exchange.
//
// Nothing executes concurrently. Every operation is a synchronous state
// transition applied to one scheduler aggregate, and the Service facade
// serializes all operations through a single critical section:
//
//	srv, _ := procsim.New()
//	_, _ = srv.Create(ctx, model.PriorityHigh)
//	running, _ := srv.Quantum(ctx)
//	report := srv.TotalInfo(ctx)
//
// The command package exposes the same operations as single-letter commands
// and cmd/procsim wraps them in an interactive shell.
package procsim
