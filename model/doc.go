// Package model contains the in-memory representation of the simulated
// operating system: processes, semaphores, messages and the error kinds
// reported when an operation is rejected.
//
// Priority and State are closed enumerations; every state change goes
// through Process.TransitionTo, which consults the Transitions table.
package model
