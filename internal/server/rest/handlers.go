package rest

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/icarus/internal/common"
	"github.com/dmitrijs2005/icarus/internal/filex"
	"github.com/dmitrijs2005/icarus/internal/server/models"
	"github.com/dmitrijs2005/icarus/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type saveRequest struct {
	ID             string `json:"id" binding:"required"`
	NewTranslation string `json:"newTranslation"`
}

type uploadForm struct {
	ProjectName string                `form:"projectName"`
	ProjectFile *multipart.FileHeader `form:"projectFile"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type projectResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type segmentResponse struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	Translation string `json:"translation"`
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", common.ErrorInvalidRequest, err)
}

func (s *HTTPServer) startSession(c *gin.Context, user *models.User) {
	token, err := s.users.IssueSession(user.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.SessionCookieName, token, int(s.users.SessionValidity().Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "username": user.UserName})
}

func (s *HTTPServer) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, invalid(err))
		return
	}

	user, err := s.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.startSession(c, user)
}

func (s *HTTPServer) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, invalid(err))
		return
	}

	user, err := s.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.startSession(c, user)
}

func (s *HTTPServer) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *HTTPServer) currentSession(c *gin.Context) {
	userID := currentUser(c)
	if userID == "" {
		c.JSON(http.StatusOK, gin.H{"loggedIn": false})
		return
	}

	user, err := s.users.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			c.JSON(http.StatusOK, gin.H{"loggedIn": false})
			return
		}
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"loggedIn": true, "user": userResponse{ID: user.ID, Username: user.UserName}})
}

func (s *HTTPServer) listProjects(c *gin.Context) {
	projects, err := s.projects.ListProjects(c.Request.Context(), currentUser(c))
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		resp = append(resp, projectResponse{ID: p.ID, Name: p.Name, UserID: p.UserID, CreatedAt: p.CreatedAt})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) getSegments(c *gin.Context) {
	segments, err := s.projects.GetSegments(c.Request.Context(), currentUser(c), c.Param("projectId"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := make([]segmentResponse, 0, len(segments))
	for _, seg := range segments {
		resp = append(resp, segmentResponse{ID: seg.ID, Source: seg.Source, Translation: seg.Translation})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) save(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, invalid(err))
		return
	}

	if err := s.projects.UpdateSegmentTranslation(c.Request.Context(), currentUser(c), req.ID, req.NewTranslation); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// upload stores the multipart file in the upload directory and hands it to
// ingestion, which owns the file from then on.
func (s *HTTPServer) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadSize)

	var form uploadForm
	if err := c.ShouldBind(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
			return
		}
		s.writeError(c, invalid(err))
		return
	}

	req := services.IngestRequest{ProjectName: form.ProjectName}
	if form.ProjectFile != nil {
		path := filepath.Join(s.uploadDir, uuid.NewString())
		if err := c.SaveUploadedFile(form.ProjectFile, path); err != nil {
			_ = filex.RemoveIfExists(path)
			s.writeError(c, fmt.Errorf("%w: store upload: %v", common.ErrorInternal, err))
			return
		}
		req.Upload = &services.Upload{OriginalFilename: form.ProjectFile.Filename, TempPath: path}
	}

	id, err := s.projects.Ingest(c.Request.Context(), currentUser(c), req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "newProjectId": id})
}

func (s *HTTPServer) deleteProject(c *gin.Context) {
	if _, err := s.projects.DeleteProject(c.Request.Context(), currentUser(c), c.Param("projectId")); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *HTTPServer) sourceURL(c *gin.Context) {
	url, err := s.projects.SourceURL(c.Request.Context(), currentUser(c), c.Param("projectId"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
