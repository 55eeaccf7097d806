package client

import (
	"context"

	"github.com/MaxonPy/kanban/internal/models"
)

type TaskAPI interface {
	GetGroupTasks(ctx context.Context, groupID int) ([]models.Task, error)
	GetUserTasks(ctx context.Context, userID int) ([]models.Task, error)
	CreateTask(ctx context.Context, draft models.TaskDraft) (*models.Task, error)
	UpdateTaskStatus(ctx context.Context, taskID int, status models.Status) error
	DeleteTask(ctx context.Context, taskID int) error
}

type GroupAPI interface {
	GetGroups(ctx context.Context) ([]models.Group, error)
}

type UserAPI interface {
	GetUsers(ctx context.Context) ([]models.User, error)
}

type FileAPI interface {
	UploadFile(ctx context.Context, filename string, data []byte) (string, error)
}

type BoardProvider interface {
	TaskAPI
	GroupAPI
	UserAPI
	FileAPI
}
