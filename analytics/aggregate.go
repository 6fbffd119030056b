package analytics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/muh-hamada/german-telc-b1-sub000/shared"
)

// progressSections are the canonical exam sections counted toward the
// completion percentage. Keys outside this list are ignored.
var progressSections = []string{"grammar", "reading", "writing", "listening", "speaking"}

// SampleDetail pairs one sampled user with their nested study records.
// Data is nil when the detail fetch for that user failed; such users still
// count toward the flat user metrics but are excluded from every
// detail-dependent aggregate.
type SampleDetail struct {
	User shared.UserDocument
	Data *shared.UserStudyData
}

// Aggregate folds the flat user list and the sampled detail records into a
// single AnalyticsData value. It performs no I/O; inputs are assumed to be
// failure-filtered already.
func Aggregate(users []shared.UserDocument, details []SampleDetail, now time.Time) shared.AnalyticsData {
	sevenDaysAgo := now.Add(-7 * 24 * time.Hour)
	thirtyDaysAgo := now.Add(-30 * 24 * time.Hour)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	data := shared.AnalyticsData{
		TotalUsers: len(users),
		Languages:  make(map[string]int),
		Platforms:  make(map[string]int),
		CompletionRates: shared.CompletionRates{
			B1: make(map[string]int),
			B2: make(map[string]int),
		},
		Streaks: shared.StreakStats{
			CurrentStreakDistribution: make(map[string]int),
			LongestStreakDistribution: make(map[string]int),
		},
		LastUpdated: now,
	}

	for _, user := range users {
		// Missing lastLoginAt counts as inactive for both windows.
		if user.LastLoginAt != nil {
			if !user.LastLoginAt.Before(sevenDaysAgo) {
				data.ActiveUsers7d++
			}
			if !user.LastLoginAt.Before(thirtyDaysAgo) {
				data.ActiveUsers30d++
			}
		}

		if user.CreatedAt != nil && !user.CreatedAt.Before(startOfMonth) {
			data.NewUsersThisMonth++
		}

		if user.NotificationSettings != nil && user.NotificationSettings.Enabled != nil {
			if *user.NotificationSettings.Enabled {
				data.Notifications.Enabled++
			} else {
				data.Notifications.Disabled++
			}
		} else {
			data.Notifications.NotSet++
		}

		language := "unknown"
		if user.Preferences != nil && user.Preferences.Language != "" {
			language = user.Preferences.Language
		}
		data.Languages[language]++

		if user.Platform != "" {
			data.Platforms[strings.ToLower(user.Platform)]++
		}

		countSignInMethod(&data.SignInMethods, user.Provider)
	}

	aggregateStudyData(&data, details)

	return data
}

// countSignInMethod classifies a free-text provider label into one of four
// canonical buckets via case-insensitive substring match. Labels matching
// none of the four are dropped, matching the dashboard's historical behavior.
func countSignInMethod(methods *shared.SignInMethodBreakdown, provider string) {
	p := strings.ToLower(provider)
	switch {
	case strings.Contains(p, "google"):
		methods.Google++
	case strings.Contains(p, "apple"):
		methods.Apple++
	case strings.Contains(p, "password"), strings.Contains(p, "email"):
		methods.Email++
	case strings.Contains(p, "anonymous"):
		methods.Anonymous++
	}
}

// aggregateStudyData folds the sampled nested records into the progress,
// completion, streak and exam-count stats.
func aggregateStudyData(data *shared.AnalyticsData, details []SampleDetail) {
	var progressSum float64
	b1CompletionSets := make(map[string]map[string]struct{})
	b2CompletionSets := make(map[string]map[string]struct{})

	for _, detail := range details {
		if detail.Data == nil {
			continue
		}

		for _, progress := range detail.Data.Progress {
			pct := calculateProgress(progress)
			switch progress.Level {
			case "b1":
				data.ProgressStats.B1Users++
				progressSum += pct
			case "b2":
				data.ProgressStats.B2Users++
				progressSum += pct
			}
		}

		for _, stat := range detail.Data.Completions {
			key := fmt.Sprintf("%s-part%d", stat.ExamType, stat.PartNumber)
			switch stat.Level {
			case "b1":
				addToSet(b1CompletionSets, key, detail.User.UID)
			case "b2":
				addToSet(b2CompletionSets, key, detail.User.UID)
			}
			data.Progress.ExamsCompleted += stat.Count
		}

		if streak := detail.Data.Streak; streak != nil {
			if streak.CurrentStreak > 0 {
				data.Streaks.ActiveStreaks++
				data.Streaks.CurrentStreakDistribution[strconv.Itoa(streak.CurrentStreak)]++
			}
			if streak.LongestStreak > 0 {
				data.Streaks.LongestStreakDistribution[strconv.Itoa(streak.LongestStreak)]++
			}
		}
	}

	// Completion rates are distinct-user counts, not raw completion counts.
	for key, userSet := range b1CompletionSets {
		data.CompletionRates.B1[key] = len(userSet)
	}
	for key, userSet := range b2CompletionSets {
		data.CompletionRates.B2[key] = len(userSet)
	}

	progressed := data.ProgressStats.B1Users + data.ProgressStats.B2Users
	data.ProgressStats.UsersWithProgress = progressed
	if progressed > 0 {
		data.ProgressStats.AverageProgress = progressSum / float64(progressed)
	}
}

// calculateProgress computes one progress record's completion percentage
// across all "partN" entries under the canonical sections. A record with
// zero parts scores 0, never NaN.
func calculateProgress(progress shared.ProgressDocument) float64 {
	completed := 0
	total := 0

	for _, section := range progressSections {
		parts, ok := progress.Sections[section]
		if !ok {
			continue
		}
		for key, part := range parts {
			if !strings.HasPrefix(key, "part") {
				continue
			}
			total++
			if part.Completed {
				completed++
			}
		}
	}

	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

func addToSet(sets map[string]map[string]struct{}, key, uid string) {
	if sets[key] == nil {
		sets[key] = make(map[string]struct{})
	}
	sets[key][uid] = struct{}{}
}
