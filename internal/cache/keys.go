package cache

import (
	"campus/internal/workflow"
	id "campus/pkg/domain"
)

// Key builders and their invalidation sets, kept together deliberately.
//
// Rule: for every builder below there is an XxxWriteSet function enumerating
// every key a write to that shape can affect. Writers call the set function;
// they never assemble key lists by hand. Adding a filter parameter to a
// builder means extending its write set in the same change.

// StudentsKey caches the unfiltered student list for a school.
func StudentsKey(schoolID id.SchoolID) string {
	return "students:" + schoolID.String()
}

// StudentsByClassKey caches the student list filtered by class.
func StudentsByClassKey(schoolID id.SchoolID, classID id.ClassID) string {
	return "students:" + schoolID.String() + ":class:" + classID.String()
}

// StudentWriteSet enumerates every student-list key a write touching the
// given class can have invalidated.
func StudentWriteSet(schoolID id.SchoolID, classID id.ClassID) []string {
	keys := []string{StudentsKey(schoolID)}
	if !classID.IsNil() {
		keys = append(keys, StudentsByClassKey(schoolID, classID))
	}
	return keys
}

// ClassesKey caches the class list for a school.
func ClassesKey(schoolID id.SchoolID) string {
	return "classes:" + schoolID.String()
}

// ClassWriteSet enumerates every class-list key a class write can have
// invalidated.
func ClassWriteSet(schoolID id.SchoolID) []string {
	return []string{ClassesKey(schoolID)}
}

// CertificatesKey caches the unfiltered certificate request list for a school.
func CertificatesKey(schoolID id.SchoolID) string {
	return "certreqs:" + schoolID.String()
}

// CertificatesByStatusKey caches the certificate request list filtered by
// workflow status.
func CertificatesByStatusKey(schoolID id.SchoolID, status workflow.Status) string {
	return "certreqs:" + schoolID.String() + ":status:" + string(status)
}

// CertificateWriteSet enumerates every certificate-list key a write can have
// invalidated. The status set is closed, so the full cross product stays
// enumerable.
func CertificateWriteSet(schoolID id.SchoolID) []string {
	keys := []string{CertificatesKey(schoolID)}
	for _, status := range workflow.Statuses {
		keys = append(keys, CertificatesByStatusKey(schoolID, status))
	}
	return keys
}
