package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/yourusername/examsim-api/internal/config"
	"github.com/yourusername/examsim-api/internal/domain/entity"
	pgRepo "github.com/yourusername/examsim-api/internal/repository/postgres"
	"github.com/yourusername/examsim-api/pkg/database"
)

// Импорт банка вопросов из xlsx-файла.
// Ожидаемые колонки: course_code, question_text, option_a, option_b,
// option_c, option_d, correct_option, solution. Первая строка — заголовки.
func main() {
	filePath := flag.String("file", "questions.xlsx", "путь к xlsx-файлу с вопросами")
	sheet := flag.String("sheet", "", "имя листа (по умолчанию первый)")
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.MigrateDB(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	f, err := excelize.OpenFile(*filePath)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *filePath, err)
	}
	defer f.Close()

	sheetName := *sheet
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		log.Fatalf("Failed to read sheet %s: %v", sheetName, err)
	}
	if len(rows) < 2 {
		log.Fatalf("Sheet %s has no data rows", sheetName)
	}

	questions := make([]entity.Question, 0, len(rows)-1)
	skipped := 0
	for i, row := range rows[1:] {
		question, err := parseQuestionRow(row)
		if err != nil {
			log.Printf("Row %d skipped: %v", i+2, err)
			skipped++
			continue
		}
		questions = append(questions, question)
	}
	if len(questions) == 0 {
		log.Fatal("No valid questions found in file")
	}

	questionRepo := pgRepo.NewQuestionRepo(db)
	if err := questionRepo.CreateBatch(questions); err != nil {
		log.Fatalf("Failed to import questions: %v", err)
	}

	fmt.Printf("Imported %d questions (%d rows skipped)\n", len(questions), skipped)
}

func parseQuestionRow(row []string) (entity.Question, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	question := entity.Question{
		CourseCode:    strings.ToUpper(cell(0)),
		Text:          cell(1),
		OptionA:       cell(2),
		OptionB:       cell(3),
		OptionC:       cell(4),
		OptionD:       cell(5),
		CorrectOption: strings.ToUpper(cell(6)),
		Solution:      cell(7),
	}

	if question.CourseCode == "" || question.Text == "" {
		return entity.Question{}, fmt.Errorf("course_code and question_text are required")
	}
	if question.OptionA == "" || question.OptionB == "" || question.OptionC == "" || question.OptionD == "" {
		return entity.Question{}, fmt.Errorf("all four options are required")
	}
	if !question.HasValidCorrectOption() {
		return entity.Question{}, fmt.Errorf("invalid correct_option %q", question.CorrectOption)
	}
	return question, nil
}
