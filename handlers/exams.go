package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/muh-hamada/german-telc-b1-sub000/database"
	"github.com/muh-hamada/german-telc-b1-sub000/shared"
)

func CreateExam(c echo.Context) error {
	var payload shared.ExamPayload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if payload.Title == "" || payload.Level == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and level are required"})
	}

	examID, err := database.ContentCollections.Exams.CreateExam(c.Request().Context(), payload)
	if err != nil {
		c.Logger().Errorf("Failed to create exam: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create exam"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "id": examID})
}

func GetAllExams(c echo.Context) error {
	exams, err := database.ContentCollections.Exams.GetAllExams(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("Failed to fetch exams: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch exams"})
	}
	return c.JSON(http.StatusOK, exams)
}

func GetExam(c echo.Context) error {
	examID := c.Param("id")

	exam, err := database.ContentCollections.Exams.GetExamByID(c.Request().Context(), examID)
	if err != nil {
		return c.String(http.StatusNotFound, fmt.Sprintf("Exam with id [%v] does not exist.", examID))
	}

	return c.JSON(http.StatusOK, exam)
}

func UpdateExam(c echo.Context) error {
	examID := c.Param("id")

	var payload shared.UpdateExamPayload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if err := database.ContentCollections.Exams.UpdateExam(c.Request().Context(), examID, payload); err != nil {
		c.Logger().Errorf("Failed to update exam %s: %v", examID, err)
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Exam not found or update failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func DeleteExam(c echo.Context) error {
	examID := c.Param("id")

	if err := database.ContentCollections.Exams.DeleteExam(c.Request().Context(), examID); err != nil {
		c.Logger().Errorf("Failed to delete exam %s: %v", examID, err)
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Exam not found or delete failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
