package cli

import "strings"

var rule = strings.Repeat("=", 60)

const welcomeText = `
Welcome to Student Report Card Management System!
This system uses:
  - Linked List: For storing student records
  - Stack: For undo operations
  - Queue: For processing operations
  - List: For storing subjects and grades
`

var menuText = "\n" + rule + "\n" +
	"    STUDENT REPORT CARD MANAGEMENT SYSTEM\n" +
	rule + "\n" +
	"1.  Add Student\n" +
	"2.  Remove Student\n" +
	"3.  Search Student by ID\n" +
	"4.  Search Student by Name\n" +
	"5.  Add Subject & Grade\n" +
	"6.  Update Grade\n" +
	"7.  Display All Students\n" +
	"8.  Display Student Report Card\n" +
	"9.  Undo Last Delete\n" +
	"10. Display Statistics\n" +
	"11. View Undo Stack\n" +
	"12. View Operation Queue\n" +
	"13. Process Operation Queue\n" +
	"14. Exit\n" +
	rule + "\n"
