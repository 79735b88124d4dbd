// Package directory хранит всех текущих студентов в односвязном списке.
//
// Список не проверяет уникальность ID: перед Insert вызывающий код обязан
// убедиться, что студента с таким ID ещё нет.
package directory

import (
	"fmt"
	"strings"

	"github.com/alem-hub/reportcard/internal/domain/student"
)

type node struct {
	student *student.Student
	next    *node
}

// Directory - упорядоченная цепочка студентов с указателем на голову и
// счётчиком размера. Инвариант: size равен числу узлов, достижимых от head.
type Directory struct {
	head *node
	size int
}

// New создаёт пустой справочник.
func New() *Directory {
	return &Directory{}
}

// IsEmpty возвращает true, если в справочнике нет студентов.
func (d *Directory) IsEmpty() bool {
	return d.head == nil
}

// Size возвращает число студентов за O(1).
func (d *Directory) Size() int {
	return d.size
}

// Insert добавляет студента в конец списка. Хвост ищется проходом от головы.
func (d *Directory) Insert(s *student.Student) {
	n := &node{student: s}

	if d.head == nil {
		d.head = n
	} else {
		cur := d.head
		for cur.next != nil {
			cur = cur.next
		}
		cur.next = n
	}

	d.size++
}

// Remove вырезает первого студента с данным ID и возвращает его.
func (d *Directory) Remove(id string) (*student.Student, bool) {
	if d.head == nil {
		return nil, false
	}

	if d.head.student.ID == id {
		removed := d.head.student
		d.head = d.head.next
		d.size--
		return removed, true
	}

	for cur := d.head; cur.next != nil; cur = cur.next {
		if cur.next.student.ID == id {
			removed := cur.next.student
			cur.next = cur.next.next
			d.size--
			return removed, true
		}
	}

	return nil, false
}

// FindByID возвращает первого студента с точным совпадением ID.
func (d *Directory) FindByID(id string) (*student.Student, bool) {
	for cur := d.head; cur != nil; cur = cur.next {
		if cur.student.ID == id {
			return cur.student, true
		}
	}
	return nil, false
}

// FindByNameSubstring возвращает всех студентов, чьё имя содержит q без учёта
// регистра, в порядке справочника.
func (d *Directory) FindByNameSubstring(q string) []*student.Student {
	needle := strings.ToLower(q)
	results := make([]*student.Student, 0)
	for cur := d.head; cur != nil; cur = cur.next {
		if strings.Contains(strings.ToLower(cur.student.Name), needle) {
			results = append(results, cur.student)
		}
	}
	return results
}

// All возвращает новый срез со всеми студентами в порядке справочника.
func (d *Directory) All() []*student.Student {
	all := make([]*student.Student, 0, d.size)
	for cur := d.head; cur != nil; cur = cur.next {
		all = append(all, cur.student)
	}
	return all
}

// Clear удаляет всех студентов.
func (d *Directory) Clear() {
	d.head = nil
	d.size = 0
}

// Dump возвращает текстовый список всех студентов с их табелями.
func (d *Directory) Dump() string {
	if d.IsEmpty() {
		return "No students found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\nTotal Students: %d\n", d.size)
	b.WriteString(strings.Repeat("=", 60) + "\n")
	i := 1
	for cur := d.head; cur != nil; cur = cur.next {
		fmt.Fprintf(&b, "\n[%d] %s\n", i, cur.student.Display())
		i++
	}
	return b.String()
}
