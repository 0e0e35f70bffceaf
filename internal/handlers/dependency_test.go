package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/minatogawa/project-board-api/internal/constants"
	"github.com/minatogawa/project-board-api/internal/models"
	"github.com/minatogawa/project-board-api/internal/repository"
	"github.com/minatogawa/project-board-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DependencyHandlerTestSuite defines the test suite for DependencyHandler
type DependencyHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *DependencyHandler
}

// SetupTest runs before each test
func (suite *DependencyHandlerTestSuite) SetupTest() {
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
		&models.HistoryEntry{},
	)
	suite.Require().NoError(err)

	depRepo := repository.NewDependencyRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)
	historyRepo := repository.NewHistoryRepository(suite.db)
	service := services.NewDependencyService(depRepo, taskRepo, services.NewHistoryRecorder(historyRepo), services.LogNotifier{})

	suite.handler = NewDependencyHandler(service)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *DependencyHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *DependencyHandlerTestSuite) createTask(text string) *models.Task {
	task := &models.Task{
		ProjectID: 1,
		Column:    "todo",
		Text:      text,
		Status:    "todo",
		Priority:  models.PriorityMedium,
		CreatedBy: 1,
	}
	suite.db.Create(task)
	return task
}

// createManagerContext simulates RequireAuth plus RequireTaskAccess for a
// project manager.
func (suite *DependencyHandlerTestSuite) createManagerContext(body []byte, task models.Task) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/tasks/1/dependencies", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, uint64(1))
	c.Set(constants.ContextKeyTask, task)
	c.Set(constants.ContextKeyIsManager, true)
	c.Set("is_member", true)

	return c, w
}

func (suite *DependencyHandlerTestSuite) addDependency(task models.Task, dependentTaskID uint64, depType string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(gin.H{
		"dependent_task_id": dependentTaskID,
		"type":              depType,
	})
	c, w := suite.createManagerContext(body, task)
	suite.handler.AddDependency(c)
	return w
}

func (suite *DependencyHandlerTestSuite) TestAddDependency_Success() {
	a := suite.createTask("A")
	b := suite.createTask("B")

	w := suite.addDependency(*a, b.ID, "blocks")

	assert.Equal(suite.T(), http.StatusCreated, w.Code)
}

func (suite *DependencyHandlerTestSuite) TestAddDependency_CycleReturnsConflict() {
	a := suite.createTask("A")
	b := suite.createTask("B")

	w := suite.addDependency(*a, b.ID, "blocks")
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.addDependency(*b, a.ID, "blocks")

	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "CYCLE_DETECTED", resp["code"])

	// The rejected edge left the graph untouched.
	var count int64
	suite.db.Model(&models.TaskDependency{}).Count(&count)
	assert.Equal(suite.T(), int64(1), count)
}

func (suite *DependencyHandlerTestSuite) TestAddDependency_DuplicateReturnsConflict() {
	a := suite.createTask("A")
	b := suite.createTask("B")

	w := suite.addDependency(*a, b.ID, "relates_to")
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.addDependency(*a, b.ID, "relates_to")

	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "CONFLICT", resp["code"])
}

func (suite *DependencyHandlerTestSuite) TestAddDependency_UnknownTypeRejected() {
	a := suite.createTask("A")
	b := suite.createTask("B")

	w := suite.addDependency(*a, b.ID, "depends_maybe")

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func TestDependencyHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(DependencyHandlerTestSuite))
}
