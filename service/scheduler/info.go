package scheduler

import "github.com/viant/procsim/model"

// Info is a read-only snapshot of the scheduler queues.
type Info struct {
	High    []int          `json:"high"`
	Normal  []int          `json:"normal"`
	Low     []int          `json:"low"`
	Blocked []int          `json:"blocked"`
	Running *model.Process `json:"running,omitempty"`
	Init    *model.Process `json:"init,omitempty"`
	NextPID int            `json:"nextPid"`
}

// Ready returns the queue snapshot for a priority.
func (i *Info) Ready(priority model.Priority) []int {
	switch priority {
	case model.PriorityHigh:
		return i.High
	case model.PriorityNormal:
		return i.Normal
	case model.PriorityLow:
		return i.Low
	}
	return nil
}
