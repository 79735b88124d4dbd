// Package student содержит доменную модель студента и его табеля успеваемости.
//
// Пакет определяет:
//
//   - Сущность Student: идентификатор, имя и табель (параллельные списки
//     предметов и оценок)
//   - Проверку оценок: ValidateGrade, диапазон [MinGrade, MaxGrade]
//   - Снимки: Clone возвращает независимую глубокую копию
//   - Представления: View для JSON API, Display/ReportCard для текстового вывода
//
// # Архитектурные принципы
//
//  1. Нулевые внешние зависимости - только стандартная библиотека Go
//  2. Инварианты держит сама сущность: len(Subjects) == len(Grades),
//     предметы внутри табеля уникальны
//  3. Диапазон оценки проверяет вызывающий код (фасад) до изменения табеля
//
// # Пример использования
//
//	s, err := student.New("S1", "Alice")
//	if err != nil {
//	    return err
//	}
//
//	s.AddSubjectGrade("Math", 90)
//	s.AddSubjectGrade("Sci", 70)
//	fmt.Printf("%.2f\n", s.Average()) // 80.00
//
//	snapshot := s.Clone()
//	s.UpdateSubjectGrade("Math", 100)
//	// snapshot по-прежнему содержит Math=90
package student
