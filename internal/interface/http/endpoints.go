package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alem-hub/enrollment-hub/internal/application/command"
	"github.com/alem-hub/enrollment-hub/internal/domain/course"
	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
	"github.com/alem-hub/enrollment-hub/internal/domain/student"
	"github.com/alem-hub/enrollment-hub/internal/interface/http/handlers"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(c *gin.Context) {
	handlers.RespondOK(c, http.StatusOK, gin.H{
		"name":    "Enrollment Hub API",
		"version": s.config.Version,
		"endpoints": gin.H{
			"health":      "/health",
			"students":    "/api/v1/students",
			"courses":     "/api/v1/courses",
			"enrollments": "/api/v1/enrollments",
		},
	})
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	status := s.deps.HealthChecker.Check(c.Request.Context())
	status.Version = s.config.Version
	if !status.Healthy {
		handlers.RespondOK(c, http.StatusServiceUnavailable, status)
		return
	}
	handlers.RespondOK(c, http.StatusOK, status)
}

// handleReady handles the readiness probe endpoint.
func (s *Server) handleReady(c *gin.Context) {
	status := s.deps.HealthChecker.Check(c.Request.Context())
	if !status.Ready {
		handlers.RespondError(c, http.StatusServiceUnavailable, "not_ready", status.Message, "")
		return
	}
	handlers.RespondOK(c, http.StatusOK, gin.H{"status": "ready"})
}

// handleLive handles the liveness probe endpoint.
func (s *Server) handleLive(c *gin.Context) {
	handlers.RespondOK(c, http.StatusOK, gin.H{"status": "alive", "uptime": s.Uptime().Round(time.Second).String()})
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type studentResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func toStudentResponse(st *student.Student) studentResponse {
	return studentResponse{ID: st.ID, FirstName: st.FirstName, LastName: st.LastName}
}

// handleCreateStudent handles POST /api/v1/students
func (s *Server) handleCreateStudent(c *gin.Context) {
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.failBinding(c, err)
		return
	}

	res, err := s.deps.CreateStudent.Handle(c.Request.Context(), command.CreateStudentCommand{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		CorrelationID: handlers.GetRequestID(c),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	handlers.RespondOK(c, http.StatusCreated, toStudentResponse(res.Student))
}

// handleUpdateStudent handles PUT /api/v1/students/{id}
func (s *Server) handleUpdateStudent(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.failBinding(c, err)
		return
	}

	st, err := s.deps.UpdateStudent.Handle(c.Request.Context(), command.UpdateStudentCommand{
		StudentID:     id,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		CorrelationID: handlers.GetRequestID(c),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	handlers.RespondOK(c, http.StatusOK, toStudentResponse(st))
}

// handleGetStudent handles GET /api/v1/students/{id}
func (s *Server) handleGetStudent(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	view, err := s.deps.Projector.StudentView(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	handlers.RespondOK(c, http.StatusOK, view)
}

// handleListStudents handles GET /api/v1/students
func (s *Server) handleListStudents(c *gin.Context) {
	views, err := s.deps.Projector.ListStudents(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	handlers.RespondList(c, views, len(views))
}

// handleStudentCourses handles GET /api/v1/students/{id}/courses
func (s *Server) handleStudentCourses(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	courses, err := s.deps.Projector.StudentCourses(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	handlers.RespondList(c, courses, len(courses))
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type courseResponse struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	EnrollmentCap int       `json:"enrollment_cap"`
}

func toCourseResponse(co *course.Course) courseResponse {
	return courseResponse{
		ID:            co.ID,
		Title:         co.Title,
		StartDate:     co.StartDate,
		EndDate:       co.EndDate,
		EnrollmentCap: co.EnrollmentCap,
	}
}

// handleCreateCourse handles POST /api/v1/courses
func (s *Server) handleCreateCourse(c *gin.Context) {
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.failBinding(c, err)
		return
	}

	res, err := s.deps.CreateCourse.Handle(c.Request.Context(), command.CreateCourseCommand{
		Title:         req.Title,
		StartDate:     req.StartDate.value(),
		EndDate:       req.EndDate.value(),
		EnrollmentCap: req.EnrollmentCap,
		CorrelationID: handlers.GetRequestID(c),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	handlers.RespondOK(c, http.StatusCreated, toCourseResponse(res.Course))
}

// handleUpdateCourse handles PUT /api/v1/courses/{id}
func (s *Server) handleUpdateCourse(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.failBinding(c, err)
		return
	}

	co, err := s.deps.UpdateCourse.Handle(c.Request.Context(), command.UpdateCourseCommand{
		CourseID:      id,
		Title:         req.Title,
		StartDate:     req.StartDate.value(),
		EndDate:       req.EndDate.value(),
		EnrollmentCap: req.EnrollmentCap,
		CorrelationID: handlers.GetRequestID(c),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	handlers.RespondOK(c, http.StatusOK, toCourseResponse(co))
}

// handleGetCourse handles GET /api/v1/courses/{id}
func (s *Server) handleGetCourse(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	view, err := s.deps.Projector.CourseView(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	handlers.RespondOK(c, http.StatusOK, view)
}

// handleListCourses handles GET /api/v1/courses
func (s *Server) handleListCourses(c *gin.Context) {
	views, err := s.deps.Projector.ListCourses(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	handlers.RespondList(c, views, len(views))
}

// handleCourseStudents handles GET /api/v1/courses/{id}/students
func (s *Server) handleCourseStudents(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	students, err := s.deps.Projector.CourseStudents(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	handlers.RespondList(c, students, len(students))
}

// ══════════════════════════════════════════════════════════════════════════════
// ENROLLMENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type enrollResponse struct {
	ID             int64     `json:"id"`
	EnrollmentDate time.Time `json:"enrollment_date"`
	Attempts       int       `json:"attempts"`
}

type progressResponse struct {
	ID          int64 `json:"id"`
	OldProgress int   `json:"old_progress"`
	Progress    int   `json:"progress"`
	Completed   bool  `json:"completed"`
}

func toProgressResponse(r *command.UpdateProgressResult) progressResponse {
	return progressResponse{
		ID:          r.EnrollmentID,
		OldProgress: r.OldProgress,
		Progress:    r.Progress,
		Completed:   r.Completed,
	}
}

// handleEnroll handles POST /api/v1/enrollments
func (s *Server) handleEnroll(c *gin.Context) {
	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.failBinding(c, err)
		return
	}

	res, err := s.deps.EnrollStudent.Handle(c.Request.Context(), command.EnrollStudentCommand{
		StudentID:      *req.StudentID,
		CourseID:       *req.CourseID,
		EnrollmentDate: req.EnrollmentDate.value(),
		CorrelationID:  handlers.GetRequestID(c),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	handlers.RespondOK(c, http.StatusCreated, enrollResponse{
		ID:             res.EnrollmentID,
		EnrollmentDate: res.EnrollmentDate,
		Attempts:       res.Attempts,
	})
}

// handleUpdateProgress handles PUT /api/v1/enrollments/{id}/progress
func (s *Server) handleUpdateProgress(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.failBinding(c, err)
		return
	}

	res, err := s.deps.UpdateProgress.Handle(c.Request.Context(), command.UpdateProgressCommand{
		EnrollmentID:  id,
		Progress:      *req.Progress,
		CorrelationID: handlers.GetRequestID(c),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	handlers.RespondOK(c, http.StatusOK, toProgressResponse(res))
}

// handleUpdateProgressByStudentCourse handles
// PUT /api/v1/students/{id}/courses/{courseId}/progress
func (s *Server) handleUpdateProgressByStudentCourse(c *gin.Context) {
	studentID, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	courseID, ok := s.pathID(c, "courseId")
	if !ok {
		return
	}
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.failBinding(c, err)
		return
	}

	res, err := s.deps.UpdateProgress.HandleByStudentCourse(c.Request.Context(), command.UpdateProgressByStudentCourseCommand{
		StudentID:     studentID,
		CourseID:      courseID,
		Progress:      *req.Progress,
		CorrelationID: handlers.GetRequestID(c),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	handlers.RespondOK(c, http.StatusOK, toProgressResponse(res))
}

// handleGetEnrollment handles GET /api/v1/enrollments/{id}
func (s *Server) handleGetEnrollment(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	view, err := s.deps.Projector.GetEnrollment(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	handlers.RespondOK(c, http.StatusOK, view)
}

// handleListEnrollments handles GET /api/v1/enrollments
func (s *Server) handleListEnrollments(c *gin.Context) {
	views, err := s.deps.Projector.ListEnrollments(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	handlers.RespondList(c, views, len(views))
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE & ADMIN HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleSoftDelete handles DELETE /api/v1/{students|courses|enrollments}/{id}
func (s *Server) handleSoftDelete(kind shared.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := s.pathID(c, "id")
		if !ok {
			return
		}
		err := s.deps.SoftDelete.Handle(c.Request.Context(), command.SoftDeleteCommand{
			Kind:          kind,
			ID:            id,
			CorrelationID: handlers.GetRequestID(c),
		})
		if err != nil {
			s.fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// handleAudit handles GET /api/v1/audit
func (s *Server) handleAudit(c *gin.Context) {
	report, err := s.deps.Projector.AuditInvariants(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	handlers.RespondOK(c, http.StatusOK, report)
}
