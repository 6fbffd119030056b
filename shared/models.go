package shared

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AppIDs lists every exam app (tenant) the analytics engine knows about.
// Analytics are always computed per app, then optionally merged for the
// cross-app reports view.
var AppIDs = []string{
	"german-b1",
	"german-b2",
	"english-b1",
	"english-b2",
	"german-a1",
	"german-a2",
	"dele-spanish-b1",
}

// NotificationSettings mirrors the per-user notification preference object.
// Enabled is a pointer so we can tell "explicitly disabled" apart from
// "never set" (three buckets in the analytics breakdown).
type NotificationSettings struct {
	Enabled *bool `bson:"enabled,omitempty" json:"enabled,omitempty"`
}

// UserPreferences holds the subset of user preferences analytics cares about.
type UserPreferences struct {
	Language string `bson:"language,omitempty" json:"language,omitempty"`
}

type UserDocument struct {
	ID                   primitive.ObjectID    `bson:"_id,omitempty" json:"id,omitempty"`
	UID                  string                `bson:"uid" json:"uid"`
	AppID                string                `bson:"appId" json:"appId"`
	CreatedAt            *time.Time            `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	LastLoginAt          *time.Time            `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
	NotificationSettings *NotificationSettings `bson:"notificationSettings,omitempty" json:"notificationSettings,omitempty"`
	Preferences          *UserPreferences      `bson:"preferences,omitempty" json:"preferences,omitempty"`
	Provider             string                `bson:"provider,omitempty" json:"provider,omitempty"`
	Platform             string                `bson:"platform,omitempty" json:"platform,omitempty"`
}

// PartProgress marks a single exam part inside a section as done or not.
type PartProgress struct {
	Completed bool `bson:"completed" json:"completed"`
}

// ProgressDocument is one user's progress for one level ("b1" or "b2").
// Sections maps section name -> part key ("part1", "part2", ...) -> status.
// Only keys starting with "part" under the canonical sections count toward
// the completion percentage.
type ProgressDocument struct {
	ID       primitive.ObjectID                 `bson:"_id,omitempty" json:"id,omitempty"`
	UID      string                             `bson:"uid" json:"uid"`
	Level    string                             `bson:"level" json:"level"`
	Sections map[string]map[string]PartProgress `bson:"sections" json:"sections"`
}

// CompletionStatDocument groups a user's exam completions by (examType, part).
type CompletionStatDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UID        string             `bson:"uid" json:"uid"`
	Level      string             `bson:"level" json:"level"`
	ExamType   string             `bson:"examType" json:"examType"`
	PartNumber int                `bson:"partNumber" json:"partNumber"`
	Count      int                `bson:"count" json:"count"`
	Scores     []float64          `bson:"scores,omitempty" json:"scores,omitempty"`
}

type StreakDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UID           string             `bson:"uid" json:"uid"`
	AppID         string             `bson:"appId" json:"appId"`
	CurrentStreak int                `bson:"currentStreak" json:"currentStreak"`
	LongestStreak int                `bson:"longestStreak" json:"longestStreak"`
}

// UserStudyData bundles the nested per-user records fetched for the sampled
// subset of users. Any of the fields may be empty/nil for a given user.
type UserStudyData struct {
	Progress    []ProgressDocument       `json:"progress"`
	Completions []CompletionStatDocument `json:"completions"`
	Streak      *StreakDocument          `json:"streak,omitempty"`
}

// NotificationBreakdown is the tri-state notification distribution.
// A user with no notificationSettings object at all lands in NotSet.
type NotificationBreakdown struct {
	Enabled  int `bson:"enabled" json:"enabled"`
	Disabled int `bson:"disabled" json:"disabled"`
	NotSet   int `bson:"notSet" json:"notSet"`
}

// SignInMethodBreakdown buckets free-text provider labels into four canonical
// methods. Labels matching none of the four are dropped from this breakdown.
type SignInMethodBreakdown struct {
	Google    int `bson:"google" json:"google"`
	Apple     int `bson:"apple" json:"apple"`
	Email     int `bson:"email" json:"email"`
	Anonymous int `bson:"anonymous" json:"anonymous"`
}

// CompletionRates counts distinct users per "{examType}-part{N}" key.
// A user who re-completed the same exam part still counts once.
type CompletionRates struct {
	B1 map[string]int `bson:"b1" json:"b1"`
	B2 map[string]int `bson:"b2" json:"b2"`
}

type ProgressStats struct {
	AverageProgress   float64 `bson:"averageProgress" json:"averageProgress"`
	UsersWithProgress int     `bson:"usersWithProgress" json:"usersWithProgress"`
	B1Users           int     `bson:"b1Users" json:"b1Users"`
	B2Users           int     `bson:"b2Users" json:"b2Users"`
}

type StreakStats struct {
	ActiveStreaks             int            `bson:"activeStreaks" json:"activeStreaks"`
	CurrentStreakDistribution map[string]int `bson:"currentStreakDistribution" json:"currentStreakDistribution"`
	LongestStreakDistribution map[string]int `bson:"longestStreakDistribution" json:"longestStreakDistribution"`
}

// VocabularyStats and PremiumStats are filled by the daily snapshot pipeline;
// the live aggregator leaves them zero. Kept in the struct so snapshot
// documents round-trip and metric projection can default them.
type VocabularyStats struct {
	TotalWordsStudied int `bson:"totalWordsStudied" json:"totalWordsStudied"`
	TotalMastered     int `bson:"totalMastered" json:"totalMastered"`
}

type PremiumStats struct {
	Total      int `bson:"total" json:"total"`
	NonPremium int `bson:"nonPremium" json:"nonPremium"`
}

type ProgressTotals struct {
	TotalScore     int `bson:"totalScore" json:"totalScore"`
	ExamsCompleted int `bson:"examsCompleted" json:"examsCompleted"`
}

// AnalyticsData is the engine's sole output type: one fully aggregated
// reporting snapshot for a single app.
type AnalyticsData struct {
	TotalUsers        int                   `bson:"totalUsers" json:"totalUsers"`
	ActiveUsers7d     int                   `bson:"activeUsers7d" json:"activeUsers7d"`
	ActiveUsers30d    int                   `bson:"activeUsers30d" json:"activeUsers30d"`
	NewUsersThisMonth int                   `bson:"newUsersThisMonth" json:"newUsersThisMonth"`
	Notifications     NotificationBreakdown `bson:"notifications" json:"notifications"`
	Languages         map[string]int        `bson:"languages" json:"languages"`
	SignInMethods     SignInMethodBreakdown `bson:"signInMethods" json:"signInMethods"`
	Platforms         map[string]int        `bson:"platforms" json:"platforms"`
	CompletionRates   CompletionRates       `bson:"completionRates" json:"completionRates"`
	ProgressStats     ProgressStats         `bson:"progressStats" json:"progressStats"`
	Streaks           StreakStats           `bson:"streaks" json:"streaks"`
	Vocabulary        VocabularyStats       `bson:"vocabulary" json:"vocabulary"`
	Premium           PremiumStats          `bson:"premium" json:"premium"`
	Progress          ProgressTotals        `bson:"progress" json:"progress"`
	LastUpdated       time.Time             `bson:"lastUpdated" json:"lastUpdated"`
}

// DailySnapshotDocument is one immutable daily aggregate, written once per day
// per app by cmd/snapshotd. Date is the document key, formatted YYYY-MM-DD so
// lexical order equals chronological order.
type DailySnapshotDocument struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Date  string             `bson:"date" json:"date"`
	AppID string             `bson:"appId" json:"appId"`
	Data  AnalyticsData      `bson:"data" json:"data"`
}

// MetricKey names a trendable metric projected out of daily snapshots.
type MetricKey string

const (
	MetricTotalUsers           MetricKey = "totalUsers"
	MetricActiveStreaks        MetricKey = "activeStreaks"
	MetricWordsStudied         MetricKey = "wordsStudied"
	MetricExamsCompleted       MetricKey = "examsCompleted"
	MetricNotificationsEnabled MetricKey = "notificationsEnabled"
	MetricPremiumUsers         MetricKey = "premiumUsers"
)

// MetricKeys lists every trendable metric, in the order the dashboard shows them.
var MetricKeys = []MetricKey{
	MetricTotalUsers,
	MetricActiveStreaks,
	MetricWordsStudied,
	MetricExamsCompleted,
	MetricNotificationsEnabled,
	MetricPremiumUsers,
}

type TrendPoint struct {
	Date  string `json:"date"`
	Value int    `json:"value"`
}

// ExamDocument is a content-managed exam definition (admin dashboard CRUD).
type ExamDocument struct {
	ID          primitive.ObjectID       `bson:"_id,omitempty" json:"id,omitempty"`
	Title       string                   `bson:"title" json:"title"`
	Level       string                   `bson:"level" json:"level"`
	ExamType    string                   `bson:"examType" json:"examType"`
	Description string                   `bson:"description" json:"description"`
	Sections    []map[string]interface{} `bson:"sections" json:"sections"`
	CreatedAt   time.Time                `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time                `bson:"updatedAt" json:"updatedAt"`
}

type ExamPayload struct {
	Title       string                   `json:"title"`
	Level       string                   `json:"level"`
	ExamType    string                   `json:"examType"`
	Description string                   `json:"description"`
	Sections    []map[string]interface{} `json:"sections"`
}

type UpdateExamPayload struct {
	Title       *string                   `json:"title,omitempty"`
	Level       *string                   `json:"level,omitempty"`
	ExamType    *string                   `json:"examType,omitempty"`
	Description *string                   `json:"description,omitempty"`
	Sections    *[]map[string]interface{} `json:"sections,omitempty"`
}

// UserClaims represents custom claims decoded from an auth JWT token
type UserClaims struct {
	UserID string `json:"sub"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
	Issuer string `json:"iss"`
}
