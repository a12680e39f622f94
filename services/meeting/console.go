package meetingsvc

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tutorly/tutorly/core"
)

type consoleService struct {
	baseURL string
	logger  core.Logger
}

var _ core.MeetingService = (*consoleService)(nil)

// NewConsoleService returns a MeetingService handing out local meeting links, for development and tests.
func NewConsoleService(conf *core.Config, logger core.Logger) core.MeetingService {
	return &consoleService{
		baseURL: strings.TrimSuffix(conf.FrontendBaseURL, "/") + "/meet/",
		logger:  logger,
	}
}

func (svc *consoleService) CreateSpace(_ context.Context) (core.MeetingSpace, error) {
	code := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	space := core.MeetingSpace{
		Name: "spaces/" + code,
		URL:  svc.baseURL + code,
		Code: code,
	}
	svc.logger.Info(fmt.Sprintf("meeting space created: %s", space.URL))
	return space, nil
}
