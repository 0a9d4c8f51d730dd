package event

import "time"

type Context struct {
	SessionID    string `json:"sessionID"`
	InvocationID string `json:"invocationID"`
	EventType    string `json:"eventType"`
	Action       string `json:"action"`
	TimeTakenMs  int    `json:"timeTakenMs"`
}

type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: time.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}
