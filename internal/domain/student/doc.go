// Package student содержит доменную модель студента.
//
// Пакет определяет:
//
//   - Сущность Student и её фабрику NewStudent
//   - Интерфейс репозитория Repository
//
// # Правила
//
// Имя и фамилия обрезаются по краям и должны содержать от 2 до 100 символов.
// Студент никогда не удаляется физически: флаг Deleted выставляется только
// через Repository.SoftDelete, а удалённый студент для всех операций
// выглядит как несуществующий.
//
//	s, err := student.NewStudent(student.NewStudentParams{
//	    FirstName: "Айгерим",
//	    LastName:  "Нурланова",
//	})
//
// Записи на курсы (enrollment) при удалении студента не трогаются:
// запросы чтения просто исключают их из подсчётов.
package student
