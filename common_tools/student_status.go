package common_tools

import (
	"context"
	"strings"
	"unicode"
)

//go:generate go run ../schemas -func=Get_Student_Status -name=get_student_status -file=student_status.go -out=schemas

const StudentNotFound = "Estudiante no encontrado"

var studentStatuses = map[string]string{
	"1024": "Aceptado en práctica en Lyon",
	"2048": "Pendiente de documentos",
	"3001": "Entrevista programada",
}

// Get_Student_Status returns the current admission status of a student.
// student_id is the numeric student identifier; any non-digit characters are ignored.
func Get_Student_Status(student_id string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, student_id)

	if status, ok := studentStatuses[digits]; ok {
		return status, nil
	}
	return StudentNotFound, nil
}

// StudentStatusTool wires Get_Student_Status into the engine.
func StudentStatusTool() Tool {
	return Tool{
		Declaration: mustDeclaration("get_student_status"),
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			id, err := stringArg(args, "student_id")
			if err != nil {
				return nil, err
			}
			return Get_Student_Status(id)
		},
	}
}
