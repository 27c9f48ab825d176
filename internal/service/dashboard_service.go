package service

import (
	"context"
	"sync"

	"training_portal/internal/apiclient"
	"training_portal/internal/model"
	"training_portal/internal/util"

	"github.com/sourcegraph/conc"
)

// DashboardView is the landing view for a role. Fields a role does not see
// stay empty; a failed sub-fetch shows up in Errors and leaves its field empty.
type DashboardView struct {
	Role              model.UserRole           `json:"role"`
	User              model.User               `json:"user"`
	Projects          []model.Project          `json:"projects,omitempty"`
	Leaderboard       []model.LeaderboardEntry `json:"leaderboard"`
	MyRank            *int                     `json:"my_rank,omitempty"`
	MyPoints          int                      `json:"my_points"`
	Students          []model.User             `json:"students,omitempty"`
	Report            *model.OverviewReport    `json:"report,omitempty"`
	Resources         []model.Resource         `json:"resources,omitempty"`
	CanManageProjects bool                     `json:"can_manage_projects"`
	Errors            map[string]string        `json:"errors,omitempty"`
}

type DashboardService struct{}

func NewDashboardService() *DashboardService {
	return &DashboardService{}
}

// Build dispatches on the session's role and runs that role's fetches concurrently.
func (s *DashboardService) Build(ctx context.Context, session *model.Session, api *apiclient.Client) (*DashboardView, error) {
	switch session.User.Role {
	case model.Student, model.Mentor, model.Manager:
	default:
		return nil, util.ErrUnknownRole
	}

	view := &DashboardView{
		Role:        session.User.Role,
		User:        session.User,
		Leaderboard: []model.LeaderboardEntry{},
	}

	var mu sync.Mutex
	fail := func(key string, err error, fallback string) {
		mu.Lock()
		defer mu.Unlock()
		if view.Errors == nil {
			view.Errors = make(map[string]string)
		}
		view.Errors[key] = apiclient.Describe(err, "Network error while loading "+key+".", fallback)
	}

	var wg conc.WaitGroup
	wg.Go(func() {
		lb, err := api.Leaderboard(ctx)
		if err != nil {
			fail("leaderboard", err, "Could not load the leaderboard.")
			return
		}
		mu.Lock()
		view.Leaderboard = lb.Entries
		view.MyRank = lb.CurrentUserRank
		view.MyPoints = lb.Points()
		mu.Unlock()
	})

	switch session.User.Role {
	case model.Student:
		wg.Go(func() {
			projects, err := api.ListProjects(ctx)
			if err != nil {
				fail("projects", err, "Could not load projects.")
				return
			}
			mu.Lock()
			view.Projects = projects
			mu.Unlock()
		})
	default:
		view.CanManageProjects = session.User.Role == model.Manager
		wg.Go(func() {
			students, err := api.ListStudents(ctx)
			if err != nil {
				fail("students", err, "Could not load students.")
				return
			}
			mu.Lock()
			view.Students = students
			mu.Unlock()
		})
		wg.Go(func() {
			report, err := api.OverviewReport(ctx)
			if err != nil {
				fail("report", err, "Could not load the overview report.")
				return
			}
			mu.Lock()
			view.Report = report
			mu.Unlock()
		})
		wg.Go(func() {
			resources, err := api.ListResources(ctx)
			if err != nil {
				fail("resources", err, "Could not load resources.")
				return
			}
			mu.Lock()
			view.Resources = resources
			mu.Unlock()
		})
	}

	wg.Wait()
	return view, nil
}
