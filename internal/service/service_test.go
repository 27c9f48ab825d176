package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"training_portal/internal/config"
	"training_portal/internal/model"
	"training_portal/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}

func TestSubmitRejectsOversizedFileLocally(t *testing.T) {
	var hits atomic.Int32
	api := newFakeAPI(t, func(r *gin.Engine) {
		r.NoRoute(func(c *gin.Context) {
			hits.Add(1)
			c.JSON(http.StatusOK, gin.H{"success": true})
		})
	})
	svc := NewSubmissionService(&config.Config{})
	require.Equal(t, int64(config.DefaultMaxUploadBytes), svc.MaxBytes)

	big := &multipart.FileHeader{Filename: "big.zip", Size: config.DefaultMaxUploadBytes + 1}
	_, err := svc.Submit(context.Background(), api, SubmissionForm{ProjectID: 1, File: big})
	assert.ErrorIs(t, err, util.ErrFileTooLarge)

	_, err = svc.Submit(context.Background(), api, SubmissionForm{ProjectID: 1})
	assert.ErrorIs(t, err, util.ErrNoFile)
	assert.Equal(t, int32(0), hits.Load())

	exact := &multipart.FileHeader{Filename: "ok.zip", Size: config.DefaultMaxUploadBytes}
	assert.NoError(t, svc.CheckFile(exact))
}

func TestSubmitUploadsAndReloadsList(t *testing.T) {
	var gotType, gotNotes, listType string
	api := newFakeAPI(t, func(r *gin.Engine) {
		r.POST("/api/projects/3/submit", func(c *gin.Context) {
			gotType = c.PostForm("submission_type")
			gotNotes = c.PostForm("notes")
			c.JSON(http.StatusCreated, gin.H{"success": true, "submission": gin.H{"id": 11, "filename": "main.py", "status": "submitted"}})
		})
		r.GET("/api/projects/3/submissions", func(c *gin.Context) {
			listType = c.Query("submission_type")
			c.JSON(http.StatusOK, gin.H{"success": true, "submissions": []gin.H{{"id": 11, "filename": "main.py"}}})
		})
	})
	svc := NewSubmissionService(&config.Config{})

	res, err := svc.Submit(context.Background(), api, SubmissionForm{
		ProjectID: 3,
		File:      fileHeader(t, "main.py", []byte("print('hi')\n")),
		Notes:     "first try",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Submission)
	assert.Equal(t, 11, res.Submission.ID)
	assert.Len(t, res.Submissions, 1)
	assert.Empty(t, res.ListError)
	assert.Equal(t, model.SubmissionTypeProject, gotType)
	assert.Equal(t, model.SubmissionTypeProject, listType)
	assert.Equal(t, "first try", gotNotes)
}

func TestSubmitKeepsUploadWhenListFails(t *testing.T) {
	api := newFakeAPI(t, func(r *gin.Engine) {
		r.POST("/api/final-project/submit", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true})
		})
		r.GET("/api/final-project/submissions", func(c *gin.Context) {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database unavailable"})
		})
	})
	svc := NewSubmissionService(&config.Config{})

	res, err := svc.Submit(context.Background(), api, SubmissionForm{
		Final: true,
		File:  fileHeader(t, "capstone.zip", []byte("PK\x03\x04")),
	})
	require.NoError(t, err)
	assert.Nil(t, res.Submission)
	assert.Equal(t, "Database unavailable", res.ListError)
}

func TestDashboardDispatchesOnRole(t *testing.T) {
	api := newFakeAPI(t, func(r *gin.Engine) {
		r.GET("/api/leaderboard", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true, "current_user_rank": 2, "current_user_points": 40,
				"leaderboard": []gin.H{{"student_id": 1, "rank": 1, "total_points": 50}, {"student_id": 2, "rank": 2, "total_points": 40}}})
		})
		r.GET("/api/projects", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true, "projects": []gin.H{{"id": 1, "name": "Calculator"}}})
		})
		r.GET("/api/students", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true, "students": []gin.H{{"id": 2, "username": "ana", "role": "student"}}})
		})
		r.GET("/api/reports/overview", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true, "report": gin.H{"total_students": 1, "total_projects": 4}})
		})
		r.GET("/api/resources", func(c *gin.Context) {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Resources are disabled"})
		})
	})
	svc := NewDashboardService()
	ctx := context.Background()

	student, err := svc.Build(ctx, &model.Session{User: model.User{ID: 2, Role: model.Student}}, api)
	require.NoError(t, err)
	assert.Len(t, student.Projects, 1)
	assert.Len(t, student.Leaderboard, 2)
	require.NotNil(t, student.MyRank)
	assert.Equal(t, 2, *student.MyRank)
	assert.Equal(t, 40, student.MyPoints)
	assert.Nil(t, student.Students)
	assert.Empty(t, student.Errors)

	manager, err := svc.Build(ctx, &model.Session{User: model.User{ID: 9, Role: model.Manager}}, api)
	require.NoError(t, err)
	assert.True(t, manager.CanManageProjects)
	assert.Len(t, manager.Students, 1)
	require.NotNil(t, manager.Report)
	assert.Equal(t, 4, manager.Report.TotalProjects)
	assert.Equal(t, "Resources are disabled", manager.Errors["resources"])
	assert.Nil(t, manager.Projects)

	mentor, err := svc.Build(ctx, &model.Session{User: model.User{ID: 8, Role: model.Mentor}}, api)
	require.NoError(t, err)
	assert.False(t, mentor.CanManageProjects)

	_, err = svc.Build(ctx, &model.Session{User: model.User{ID: 7, Role: "guest"}}, api)
	assert.ErrorIs(t, err, util.ErrUnknownRole)
}

func TestFilterResources(t *testing.T) {
	resources := []model.Resource{
		{ID: 1, Title: "Python Basics", Category: "Python"},
		{ID: 2, Title: "Git workflow", Description: "Branches and merges", Category: "Tools"},
		{ID: 3, Title: "Loops", Description: "for and while in python", Category: "Python"},
		{ID: 4, Title: "Untitled"},
	}

	assert.Equal(t, []string{"all", "Python", "Tools"}, ResourceCategories(resources))
	assert.Len(t, FilterResources(resources, ResourceFilter{}), 4)
	assert.Len(t, FilterResources(resources, ResourceFilter{Category: AllCategories}), 4)

	got := FilterResources(resources, ResourceFilter{Search: "PYTHON"})
	require.Len(t, got, 2)
	assert.Equal(t, []int{1, 3}, []int{got[0].ID, got[1].ID})

	got = FilterResources(resources, ResourceFilter{Search: "merge", Category: "Tools"})
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].ID)

	assert.Empty(t, FilterResources(resources, ResourceFilter{Search: "merge", Category: "Python"}))
}

func TestCreateResourceDefaultsCategory(t *testing.T) {
	var category string
	api := newFakeAPI(t, func(r *gin.Engine) {
		r.POST("/api/resources", func(c *gin.Context) {
			var body model.CreateResourceRequest
			_ = c.ShouldBindJSON(&body)
			category = body.Category
			c.JSON(http.StatusCreated, gin.H{"success": true, "resource": gin.H{"id": 5, "title": body.Title, "category": body.Category}})
		})
	})

	_, err := NewResourceService().Create(context.Background(), api, model.CreateResourceRequest{Title: "Regex", Content: "..."})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultResourceCategory, category)
}

func TestRunFormatsFailuresAsOutput(t *testing.T) {
	api := newFakeAPI(t, func(r *gin.Engine) {
		r.POST("/api/projects/1/run", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true, "output": "hello\n", "code": "print('hello')"})
		})
		r.POST("/api/projects/2/run", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": "SyntaxError: invalid syntax"})
		})
		r.POST("/api/projects/3/run", func(c *gin.Context) {
			c.JSON(http.StatusInternalServerError, gin.H{})
		})
	})
	svc := NewProjectService()
	ctx := context.Background()

	ok := svc.Run(ctx, api, 1)
	assert.False(t, ok.Failed)
	assert.Equal(t, "hello\n", ok.Output)

	failed := svc.Run(ctx, api, 2)
	assert.True(t, failed.Failed)
	assert.Equal(t, "Error: SyntaxError: invalid syntax", failed.Output)

	broken := svc.Run(ctx, api, 3)
	assert.True(t, broken.Failed)
	assert.Equal(t, "Error: Could not run project", broken.Output)
}

func TestResetPasswordRequiresPasswordOrGenerate(t *testing.T) {
	var sent model.ResetPasswordRequest
	api := newFakeAPI(t, func(r *gin.Engine) {
		r.POST("/api/admin/students/4/reset-password", func(c *gin.Context) {
			_ = c.ShouldBindJSON(&sent)
			c.JSON(http.StatusOK, gin.H{"success": true, "student": gin.H{"id": 4, "username": "ana", "role": "student"}})
		})
	})
	svc := NewAdminService()
	ctx := context.Background()

	_, err := svc.ResetPassword(ctx, api, 4, model.ResetPasswordRequest{Password: "  "})
	assert.ErrorIs(t, err, util.ErrInvalidPassword)

	_, err = svc.ResetPassword(ctx, api, 4, model.ResetPasswordRequest{Password: "s3cret!", Generate: true})
	require.NoError(t, err)
	assert.Equal(t, "s3cret!", sent.Password)
	assert.False(t, sent.Generate)
}

func TestArchiveKeyStripsDirectories(t *testing.T) {
	assert.Equal(t, "submissions/3/main.py", ArchiveKey(3, "main.py"))
	assert.Equal(t, "submissions/3/passwd", ArchiveKey(3, "../../etc/passwd"))
	assert.Equal(t, "submissions/3/x.zip", ArchiveKey(3, `C:\Users\ana\x.zip`))
	assert.Equal(t, "submissions/3/file", ArchiveKey(3, ""))
}

func TestArchiveCopiesSubmissionToStorage(t *testing.T) {
	api := newFakeAPI(t, func(r *gin.Engine) {
		r.GET("/api/submissions/5/download", func(c *gin.Context) {
			c.Header("Content-Disposition", `attachment; filename="main.py"`)
			c.Data(http.StatusOK, "text/x-python", []byte("print(1)\n"))
		})
	})
	dir := t.TempDir()
	storage := NewStorageService(&config.Config{Storage: config.StorageConfig{Type: util.StorageLocal, LocalPath: dir}})

	url, err := NewMentorService(storage).Archive(context.Background(), api, 5)
	require.NoError(t, err)
	assert.Equal(t, "/archive/submissions/5/main.py", url)

	data, err := os.ReadFile(filepath.Join(dir, "submissions", "5", "main.py"))
	require.NoError(t, err)
	assert.Equal(t, "print(1)\n", string(data))

	_, err = NewMentorService(nil).Archive(context.Background(), api, 5)
	assert.ErrorIs(t, err, util.ErrStorageNotEnabled)
}
