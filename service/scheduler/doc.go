// Package scheduler owns the ready queues, the blocked set, the running slot
// and the init process. It is the only service allowed to change which
// process is running; the semaphore and message services block and wake
// processes through its primitives.
package scheduler
