package kanban

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/MaxonPy/kanban/internal/models"
)

// deadlineLayout matches the backend's datetime serialization.
const deadlineLayout = "2006-01-02T15:04:05"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) GetGroups(ctx context.Context) ([]models.Group, error) {
	var records []GroupRecord
	if err := c.getJSON(ctx, "/groups", &records); err != nil {
		return nil, fmt.Errorf("get groups: %w", err)
	}

	groups := make([]models.Group, 0, len(records))
	for _, rec := range records {
		groups = append(groups, models.Group{
			ID:          rec.GroupID,
			Name:        rec.Name,
			Description: rec.Description,
			CreatedAt:   parseTimestamp(rec.CreatedAt),
		})
	}
	return groups, nil
}

func (c *Client) GetUsers(ctx context.Context) ([]models.User, error) {
	var records []UserRecord
	if err := c.getJSON(ctx, "/users", &records); err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	users := make([]models.User, 0, len(records))
	for _, rec := range records {
		users = append(users, models.User{
			ID:   rec.UserID,
			Name: rec.Name,
			Role: rec.Role,
		})
	}
	return users, nil
}

func (c *Client) GetGroupTasks(ctx context.Context, groupID int) ([]models.Task, error) {
	var records []TaskRecord
	if err := c.getJSON(ctx, "/tasks/group/"+strconv.Itoa(groupID), &records); err != nil {
		return nil, fmt.Errorf("get group tasks: %w", err)
	}
	return mapTaskRecords(records)
}

func (c *Client) GetUserTasks(ctx context.Context, userID int) ([]models.Task, error) {
	var records []TaskRecord
	if err := c.getJSON(ctx, "/users_tasks/"+strconv.Itoa(userID), &records); err != nil {
		return nil, fmt.Errorf("get user tasks: %w", err)
	}
	return mapTaskRecords(records)
}

func (c *Client) CreateTask(ctx context.Context, draft models.TaskDraft) (*models.Task, error) {
	remoteStatus, err := models.StatusAssigned.Remote()
	if err != nil {
		return nil, err
	}

	reqBody := CreateTaskRequest{
		Title:         draft.Title,
		Description:   draft.Description,
		Priority:      string(draft.Priority),
		Status:        remoteStatus,
		GroupID:       draft.GroupID,
		UserIDs:       draft.ExecutorIDs,
		AssignedFiles: draft.AttachedFiles,
	}
	if draft.DueAt != nil {
		deadline := draft.DueAt.Format(deadlineLayout)
		reqBody.Deadline = &deadline
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal create task request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tasks", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("build create task request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	var created TaskRecord
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("parse create task response: %w", err)
	}

	task, err := mapTaskRecord(created)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTaskStatus(ctx context.Context, taskID int, status models.Status) error {
	remoteStatus, err := status.Remote()
	if err != nil {
		return err
	}

	body, err := json.Marshal(UpdateStatusRequest{Status: remoteStatus})
	if err != nil {
		return fmt.Errorf("marshal status update: %w", err)
	}

	url := c.baseURL + "/tasks/" + strconv.Itoa(taskID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("build status update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	return nil
}

func (c *Client) DeleteTask(ctx context.Context, taskID int) error {
	url := c.baseURL + "/tasks/" + strconv.Itoa(taskID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("build delete task request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (c *Client) UploadFile(ctx context.Context, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build multipart form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write multipart form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-file", &buf)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}

	var uploaded UploadFileResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("parse upload response: %w", err)
	}
	return uploaded.FilePath, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	errorBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("API error status %d", resp.StatusCode)
	}

	var apiErr APIError
	if err := json.Unmarshal(errorBody, &apiErr); err == nil && apiErr.Detail != "" {
		return fmt.Errorf("API error: %s", apiErr.Detail)
	}
	return fmt.Errorf("API error status %d", resp.StatusCode)
}

func mapTaskRecords(records []TaskRecord) ([]models.Task, error) {
	tasks := make([]models.Task, 0, len(records))
	for _, rec := range records {
		task, err := mapTaskRecord(rec)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func mapTaskRecord(rec TaskRecord) (models.Task, error) {
	status, err := models.ParseRemoteStatus(rec.Status)
	if err != nil {
		return models.Task{}, fmt.Errorf("task %d: %w", rec.TaskID, err)
	}

	task := models.Task{
		ID:            rec.TaskID,
		Title:         rec.Title,
		Description:   rec.Description,
		AssignerID:    rec.AssignerID,
		ExecutorIDs:   rec.UserIDs,
		Priority:      models.Priority(rec.Priority),
		Status:        status,
		GroupID:       rec.GroupID,
		AttachedFiles: rec.AssignedFiles,
	}
	if rec.Deadline != nil && *rec.Deadline != "" {
		due := parseTimestamp(*rec.Deadline)
		if !due.IsZero() {
			task.DueAt = &due
		}
	}
	return task, nil
}

// parseTimestamp accepts the backend's plain datetime layout and RFC3339.
// A value that parses as neither yields the zero time.
func parseTimestamp(raw string) time.Time {
	if t, err := time.Parse(deadlineLayout, raw); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Time{}
}
