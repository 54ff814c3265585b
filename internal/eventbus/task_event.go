package eventbus

import "context"

type TaskEventType string

const (
	// TaskEventDone 异步请求成功落库
	TaskEventDone TaskEventType = "TaskDone"
	// TaskEventFailed 异步请求失败，Reason 携带结构化原因
	TaskEventFailed TaskEventType = "TaskFailed"
)

// TaskEvent 一次异步任务的状态变化
// Kind/Key 与协调器的任务键一致
type TaskEvent struct {
	Type   TaskEventType
	Kind   string
	Key    string
	Reason string
}

type TaskEventHandler func(ctx context.Context, event TaskEvent) error
