package gpu

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
)

type QueueWorkDoneStatus int

const (
	QueueWorkDoneStatusSuccess QueueWorkDoneStatus = iota
	QueueWorkDoneStatusError
)

func (s QueueWorkDoneStatus) String() string {
	switch s {
	case QueueWorkDoneStatusSuccess:
		return "Success"
	case QueueWorkDoneStatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Queue accepts command buffers for execution.
type Queue struct {
	device *Device
	handle core1_0.Queue
	family int
}

func (q *Queue) Family() int {
	return q.family
}

// Submit queues command buffers for execution without any synchronization.
func (q *Queue) Submit(buffers ...*CommandBuffer) error {
	handles := make([]core1_0.CommandBuffer, 0, len(buffers))
	for _, buffer := range buffers {
		handles = append(handles, buffer.handle)
	}

	_, err := q.handle.Submit(nil, []core1_0.SubmitInfo{
		{
			CommandBuffers: handles,
		},
	})
	return errors.Wrap(err, "submit")
}

// OnSubmittedWorkDone waits until everything submitted so far has executed and
// then reports through callback.
func (q *Queue) OnSubmittedWorkDone(callback func(status QueueWorkDoneStatus)) {
	_, err := q.handle.WaitIdle()
	if err != nil {
		logger.Printf("queue wait failed: %v", err)
		callback(QueueWorkDoneStatusError)
		return
	}
	callback(QueueWorkDoneStatusSuccess)
}
