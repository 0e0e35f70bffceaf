package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/minatogawa/project-board-api/internal/config"
	"github.com/minatogawa/project-board-api/internal/constants"
	"github.com/minatogawa/project-board-api/internal/models"
	"github.com/minatogawa/project-board-api/internal/repository"
	"github.com/minatogawa/project-board-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler
	project models.Project
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Column{},
		&models.Task{},
		&models.TaskDependency{},
		&models.Subtask{},
		&models.TaskTag{},
		&models.Estimate{},
		&models.TimeEntry{},
		&models.HistoryEntry{},
	)
	suite.Require().NoError(err)

	taskRepo := repository.NewTaskRepository(suite.db)
	columnRepo := repository.NewColumnRepository(suite.db)
	historyRepo := repository.NewHistoryRepository(suite.db)
	taskService := services.NewTaskService(
		taskRepo,
		columnRepo,
		repository.NewProjectRepository(suite.db),
		repository.NewUserRepository(suite.db),
		historyRepo,
		services.NewHistoryRecorder(historyRepo),
		services.LogNotifier{},
		config.MissingColumnFail,
	)

	// No AI service in tests
	suite.handler = NewTaskHandler(taskService, nil)

	project := models.Project{Name: "Board", InviteCode: "BOARD-CODE", CreatedBy: 1}
	suite.db.Create(&project)
	suite.project = project
	for i, col := range []string{"backlog", "todo", "in_progress", "review", "done"} {
		suite.db.Create(&models.Column{ProjectID: project.ID, Name: col, Order: i})
	}

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskHandlerTestSuite) createTask(column, text string) *models.Task {
	task := &models.Task{
		ProjectID: suite.project.ID,
		Column:    column,
		Text:      text,
		Status:    column,
		Priority:  models.PriorityMedium,
		CreatedBy: 1,
	}
	suite.db.Create(task)
	return task
}

// createTaskContext simulates RequireAuth plus RequireTaskAccess.
func (suite *TaskHandlerTestSuite) createTaskContext(body []byte, task models.Task, isManager bool) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/tasks/1/move", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, uint64(1))
	c.Set(constants.ContextKeyTask, task)
	c.Set(constants.ContextKeyIsManager, isManager)
	c.Set("is_member", true)

	return c, w
}

func (suite *TaskHandlerTestSuite) TestMoveTask_RecordsColumnTransition() {
	task := suite.createTask("backlog", "Ship the feature")

	body, _ := json.Marshal(gin.H{"column": "done"})
	c, w := suite.createTaskContext(body, *task, true)

	suite.handler.MoveTask(c)

	suite.Require().Equal(http.StatusOK, w.Code)

	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "done", resp["column"])
	// Moving never rewrites the workflow status.
	assert.Equal(suite.T(), "backlog", resp["status"])

	var entries []models.HistoryEntry
	suite.db.Where("action = ?", models.ActionTaskMoved).Find(&entries)
	suite.Require().Len(entries, 1)
	assert.Contains(suite.T(), entries[0].Details, `"from_column":"backlog"`)
	assert.Contains(suite.T(), entries[0].Details, `"to_column":"done"`)
}

func (suite *TaskHandlerTestSuite) TestMoveTask_MemberForbidden() {
	task := suite.createTask("backlog", "Ship the feature")

	body, _ := json.Marshal(gin.H{"column": "done"})
	c, w := suite.createTaskContext(body, *task, false)

	suite.handler.MoveTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *TaskHandlerTestSuite) TestMoveTask_MissingTargetColumn() {
	task := suite.createTask("backlog", "Ship the feature")

	body, _ := json.Marshal(gin.H{"column": "launchpad"})
	c, w := suite.createTaskContext(body, *task, true)

	suite.handler.MoveTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestSuggestSubtasks_UnavailableWithoutAIService() {
	task := suite.createTask("todo", "Plan the migration")

	c, w := suite.createTaskContext(nil, *task, true)

	suite.handler.SuggestSubtasks(c)

	assert.Equal(suite.T(), http.StatusServiceUnavailable, w.Code)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
