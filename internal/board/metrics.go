package board

// TeamMetrics summarizes sprint progress for the dashboard header and the
// boardd metrics endpoint.
type TeamMetrics struct {
	SprintID        string         `json:"sprint_id,omitempty"`
	TotalPoints     int            `json:"total_points"`
	CompletedPoints int            `json:"completed_points"`
	Velocity        float64        `json:"velocity"`
	TeamCapacity    int            `json:"team_capacity"`
	StatusCounts    map[Status]int `json:"status_counts"`
	BlockedTasks    int            `json:"blocked_tasks"`
}

// ComputeTeamMetrics derives metrics from a sprint and the tasks it scopes.
// When sprint is nil the whole task list is measured and capacity is zero.
func ComputeTeamMetrics(sprint *Sprint, tasks []Task) TeamMetrics {
	metrics := TeamMetrics{
		StatusCounts: map[Status]int{},
	}
	scoped := tasks
	if sprint != nil {
		metrics.SprintID = sprint.ID
		metrics.TeamCapacity = sprint.Capacity
		if len(sprint.TaskIDs) > 0 {
			member := make(map[string]struct{}, len(sprint.TaskIDs))
			for _, id := range sprint.TaskIDs {
				member[id] = struct{}{}
			}
			scoped = scoped[:0:0]
			for _, task := range tasks {
				if _, ok := member[task.ID]; ok {
					scoped = append(scoped, task)
				}
			}
		}
	}
	for _, task := range scoped {
		metrics.StatusCounts[task.Status]++
		metrics.TotalPoints += task.StoryPoints
		if task.Status == StatusDone {
			metrics.CompletedPoints += task.StoryPoints
		}
		if task.Status == StatusBlocked {
			metrics.BlockedTasks++
		}
	}
	if metrics.TotalPoints > 0 {
		metrics.Velocity = float64(metrics.CompletedPoints) / float64(metrics.TotalPoints)
	}
	return metrics
}
