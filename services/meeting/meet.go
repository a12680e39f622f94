package meetingsvc

import (
	"context"

	"github.com/pkg/errors"
	meet "google.golang.org/api/meet/v2"
	"google.golang.org/api/option"

	"github.com/tutorly/tutorly/core"
)

type googleMeetService struct {
	spaces *meet.SpacesService
}

var _ core.MeetingService = (*googleMeetService)(nil)

// NewGoogleMeetService returns a MeetingService creating Google Meet spaces
// with the service account credentials file at credentialsFile.
func NewGoogleMeetService(ctx context.Context, credentialsFile string) (core.MeetingService, error) {
	svc, err := meet.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, errors.Wrap(err, "creating meet client")
	}
	return &googleMeetService{spaces: svc.Spaces}, nil
}

func (svc *googleMeetService) CreateSpace(ctx context.Context) (core.MeetingSpace, error) {
	space, err := svc.spaces.Create(&meet.Space{}).Context(ctx).Do()
	if err != nil {
		return core.MeetingSpace{}, errors.Wrap(err, "creating meet space")
	}
	return core.MeetingSpace{
		Name: space.Name,
		URL:  space.MeetingUri,
		Code: space.MeetingCode,
	}, nil
}
