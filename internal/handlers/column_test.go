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

// ColumnHandlerTestSuite defines the test suite for ColumnHandler
type ColumnHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *ColumnHandler
	project models.Project
}

// SetupTest runs before each test
func (suite *ColumnHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Column{},
		&models.Task{},
		&models.HistoryEntry{},
	)
	suite.Require().NoError(err)

	columnRepo := repository.NewColumnRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)
	historyRepo := repository.NewHistoryRepository(suite.db)
	service := services.NewColumnService(columnRepo, taskRepo, services.NewHistoryRecorder(historyRepo))

	suite.handler = NewColumnHandler(service)

	project := models.Project{Name: "Board", InviteCode: "BOARD-CODE", CreatedBy: 1}
	suite.db.Create(&project)
	suite.project = project

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *ColumnHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *ColumnHandlerTestSuite) createColumn(name string, order int) *models.Column {
	column := &models.Column{ProjectID: suite.project.ID, Name: name, Order: order}
	suite.db.Create(column)
	return column
}

// createManagerContext simulates RequireAuth plus RequireProjectAccess for a
// project manager.
func (suite *ColumnHandlerTestSuite) createManagerContext(method, url string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, uint64(1))
	c.Set(constants.ContextKeyProject, suite.project)
	c.Set(constants.ContextKeyIsManager, true)
	c.Set("is_member", true)

	return c, w
}

func (suite *ColumnHandlerTestSuite) TestCreateColumn_Success() {
	body, _ := json.Marshal(gin.H{"name": "review"})
	c, w := suite.createManagerContext("POST", "/api/projects/1/columns", body)

	suite.handler.CreateColumn(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)
}

func (suite *ColumnHandlerTestSuite) TestDeleteColumn_ConflictWhileTasksReferenceIt() {
	suite.createColumn("todo", 0)
	suite.db.Create(&models.Task{
		ProjectID: suite.project.ID,
		Column:    "todo",
		Text:      "Still here",
		Status:    "todo",
		Priority:  models.PriorityMedium,
		CreatedBy: 1,
	})

	c, w := suite.createManagerContext("DELETE", "/api/projects/1/columns/1", nil)
	c.Params = gin.Params{{Key: "column_id", Value: "1"}}

	suite.handler.DeleteColumn(c)

	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "CONFLICT", resp["code"])
}

func (suite *ColumnHandlerTestSuite) TestDeleteColumn_EmptySucceeds() {
	suite.createColumn("todo", 0)

	c, w := suite.createManagerContext("DELETE", "/api/projects/1/columns/1", nil)
	c.Params = gin.Params{{Key: "column_id", Value: "1"}}

	suite.handler.DeleteColumn(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *ColumnHandlerTestSuite) TestReorderColumns_Success() {
	first := suite.createColumn("backlog", 0)
	second := suite.createColumn("done", 1)

	body, _ := json.Marshal(gin.H{
		"columns": []gin.H{
			{"column_id": second.ID, "order": 0},
			{"column_id": first.ID, "order": 1},
		},
	})
	c, w := suite.createManagerContext("PUT", "/api/projects/1/columns/reorder", body)

	suite.handler.ReorderColumns(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var reloaded models.Column
	suite.db.First(&reloaded, second.ID)
	assert.Equal(suite.T(), 0, reloaded.Order)
}

func TestColumnHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ColumnHandlerTestSuite))
}
