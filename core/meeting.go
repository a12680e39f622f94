package core

import "context"

type (
	// MeetingSpace is a virtual room classes and interviews are held in.
	MeetingSpace struct {
		Name string
		URL  string
		Code string
	}

	// MeetingService is any service that can create meeting spaces.
	MeetingService interface {
		CreateSpace(ctx context.Context) (MeetingSpace, error)
	}
)
