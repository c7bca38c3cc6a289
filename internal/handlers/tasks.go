package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todo-tracker/backend/internal/services"
)

const missingUpdateFields = "id, title, and description are required"

type TaskHandler struct {
	taskService services.TaskService
	log         logrus.FieldLogger
}

func NewTaskHandler(taskService services.TaskService, log logrus.FieldLogger) *TaskHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TaskHandler{taskService: taskService, log: log.WithField("handler", "tasks")}
}

type createTaskInput struct {
	UserID      string `json:"userId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type taskIDInput struct {
	ID string `json:"id"`
}

type updateTaskInput struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CreateTask treats an unreadable body as empty, so the failure still
// carries the create operation's message.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var input createTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.log.WithError(err).Debug("unreadable create body")
		input = createTaskInput{}
	}

	task, err := h.taskService.CreateToDo(c.Request.Context(), input.UserID, input.Title, input.Description)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": true, "success": task})
}

// ListTasks handles GET /todo?userId=.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.taskService.GetUserToDoList(c.Request.Context(), c.Query("userId"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": true, "success": tasks})
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	var input taskIDInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.log.WithError(err).Debug("unreadable delete body")
		input = taskIDInput{}
	}

	task, err := h.taskService.DeleteToDo(c.Request.Context(), input.ID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": true, "success": task})
}

// UpdateTask answers with its own {status, message} envelope instead of
// going through the error reporter.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var input updateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil || input.ID == "" || input.Title == "" || input.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": missingUpdateFields})
		return
	}

	task, err := h.taskService.UpdateToDo(c.Request.Context(), services.UpdateToDoInput{
		ID:          input.ID,
		Title:       input.Title,
		Description: input.Description,
	})
	if err != nil {
		h.log.WithError(err).WithField("task_id", input.ID).Error("update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"status": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": true, "todo": task})
}
