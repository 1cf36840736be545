package tasks

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/algosignal/signalhub/internal/models"
)

// Manager handles the execution of scheduled tasks
type Manager struct {
	db     *gorm.DB
	logger *slog.Logger
	tasks  []Task
}

// Task represents a scheduled task that needs to be executed
type Task interface {
	Start()
	Stop()
}

// NewManager creates a new task manager
func NewManager(db *gorm.DB, logger *slog.Logger) *Manager {
	return &Manager{
		db:     db,
		logger: logger,
		tasks:  make([]Task, 0),
	}
}

// RegisterTask registers a task with the manager
func (m *Manager) RegisterTask(task Task) {
	m.tasks = append(m.tasks, task)
}

// StartScheduledTasks starts all registered tasks
func (m *Manager) StartScheduledTasks(retentionDays int) {
	cleanupTask := NewCleanupTask(m.db, m.logger, retentionDays)
	m.RegisterTask(cleanupTask)

	for _, task := range m.tasks {
		go task.Start()
	}

	m.logger.Info("Started all scheduled tasks")
}

// StopAllTasks stops all running tasks
func (m *Manager) StopAllTasks() {
	for _, task := range m.tasks {
		task.Stop()
	}
	m.logger.Info("Stopped all scheduled tasks")
}

// CleanupTask prunes old closed signals once a day. With a zero retention
// window it runs but deletes nothing, keeping the contract that no exposed
// operation removes rows.
type CleanupTask struct {
	db            *gorm.DB
	logger        *slog.Logger
	retentionDays int
	stopChan      chan struct{}
	isRunning     bool
}

// NewCleanupTask creates a new signal cleanup task
func NewCleanupTask(db *gorm.DB, logger *slog.Logger, retentionDays int) *CleanupTask {
	return &CleanupTask{
		db:            db,
		logger:        logger,
		retentionDays: retentionDays,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the cleanup task
func (t *CleanupTask) Start() {
	if t.isRunning {
		return
	}

	t.isRunning = true
	ticker := time.NewTicker(24 * time.Hour)

	// Run immediately on start
	go t.cleanup()

	go func() {
		for {
			select {
			case <-ticker.C:
				t.cleanup()
			case <-t.stopChan:
				ticker.Stop()
				t.isRunning = false
				return
			}
		}
	}()

	t.logger.Info("Signal cleanup task started")
}

// Stop terminates the cleanup task
func (t *CleanupTask) Stop() {
	if !t.isRunning {
		return
	}

	close(t.stopChan)
	t.logger.Info("Signal cleanup task stopped")
}

// cleanup deletes closed signals older than the retention window
func (t *CleanupTask) cleanup() {
	if t.retentionDays <= 0 {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -t.retentionDays)
	result := t.db.Where("status = ? AND created_at < ?", models.SignalStatusClosed, cutoff).Delete(&models.Signal{})
	if result.Error != nil {
		t.logger.Error("Signal cleanup failed", slog.Any("error", result.Error))
		return
	}

	t.logger.Info("Signal cleanup completed", slog.Int64("deleted", result.RowsAffected))
}
