package handlers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"studymate/internal/db"
	"studymate/internal/models"
	"studymate/internal/utils"
)

func TestApplyCreatesPendingRequest(t *testing.T) {
	r := setupServer(t)
	signup(t, r, "alice", "앨리스", "a@x.com", "pass1234")
	bobCookies := signupAndLogin(t, r, "bob", "밥", "b@x.com")
	alice := userByLoginID(t, "alice")
	bob := userByLoginID(t, "bob")

	study := seedStudy(t, alice, "Rust 스터디", utils.NowKST())

	w := doPOST(r, fmt.Sprintf("/study/%d/apply", study.ID), nil, bobCookies)
	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d (%s)", w.Code, w.Body.String())
	}

	var enrollment models.Enrollment
	if err := db.DB.Where("user_id = ? AND study_id = ?", bob.ID, study.ID).First(&enrollment).Error; err != nil {
		t.Fatalf("enrollment not persisted: %v", err)
	}
	if enrollment.Status != models.EnrollmentPending {
		t.Errorf("expected pending, got %s", enrollment.Status)
	}

	// Applying again is a no-op, not a second row
	doPOST(r, fmt.Sprintf("/study/%d/apply", study.ID), nil, bobCookies)
	var count int64
	db.DB.Model(&models.Enrollment{}).Where("user_id = ? AND study_id = ?", bob.ID, study.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected a single enrollment row, got %d", count)
	}
}

func TestApplyRejectedForOwnerAndClosed(t *testing.T) {
	r := setupServer(t)
	aliceCookies := signupAndLogin(t, r, "alice", "앨리스", "a@x.com")
	bobCookies := signupAndLogin(t, r, "bob", "밥", "b@x.com")
	alice := userByLoginID(t, "alice")

	study := seedStudy(t, alice, "Rust 스터디", utils.NowKST())

	// Owners don't apply to their own listing
	w := doPOST(r, fmt.Sprintf("/study/%d/apply", study.ID), nil, aliceCookies)
	if w.Code != http.StatusBadRequest {
		t.Errorf("owner apply: expected 400, got %d", w.Code)
	}

	// Closed listings take no applications
	db.DB.Model(&study).Update("is_closed", true)
	w = doPOST(r, fmt.Sprintf("/study/%d/apply", study.ID), nil, bobCookies)
	if w.Code != http.StatusBadRequest {
		t.Errorf("closed apply: expected 400, got %d", w.Code)
	}

	var count int64
	db.DB.Model(&models.Enrollment{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no enrollments, got %d", count)
	}
}

func TestDecideRequiresOwner(t *testing.T) {
	r := setupServer(t)
	aliceCookies := signupAndLogin(t, r, "alice", "앨리스", "a@x.com")
	bobCookies := signupAndLogin(t, r, "bob", "밥", "b@x.com")
	alice := userByLoginID(t, "alice")
	bob := userByLoginID(t, "bob")

	study := seedStudy(t, alice, "Rust 스터디", utils.NowKST())
	enrollment := models.Enrollment{UserID: bob.ID, StudyID: study.ID, Status: models.EnrollmentPending, CreatedAt: utils.NowKST()}
	db.DB.Create(&enrollment)

	// The applicant can't accept their own request
	w := doPOST(r, fmt.Sprintf("/enrollment/%d/accept", enrollment.ID), nil, bobCookies)
	if w.Code != http.StatusForbidden {
		t.Errorf("non-owner accept: expected 403, got %d", w.Code)
	}

	w = doPOST(r, fmt.Sprintf("/enrollment/%d/accept", enrollment.ID), nil, aliceCookies)
	if w.Code != http.StatusFound {
		t.Fatalf("owner accept: expected redirect, got %d (%s)", w.Code, w.Body.String())
	}

	var reread models.Enrollment
	db.DB.First(&reread, enrollment.ID)
	if reread.Status != models.EnrollmentAccepted {
		t.Errorf("expected accepted, got %s", reread.Status)
	}

	// A settled request stays settled
	w = doPOST(r, fmt.Sprintf("/enrollment/%d/reject", enrollment.ID), nil, aliceCookies)
	if w.Code != http.StatusFound {
		t.Errorf("decide on settled: expected redirect, got %d", w.Code)
	}
	db.DB.First(&reread, enrollment.ID)
	if reread.Status != models.EnrollmentAccepted {
		t.Errorf("settled request flipped to %s", reread.Status)
	}
}

func TestRejectAndMissingEnrollment(t *testing.T) {
	r := setupServer(t)
	aliceCookies := signupAndLogin(t, r, "alice", "앨리스", "a@x.com")
	signup(t, r, "bob", "밥", "b@x.com", "pass1234")
	alice := userByLoginID(t, "alice")
	bob := userByLoginID(t, "bob")

	study := seedStudy(t, alice, "Rust 스터디", utils.NowKST())
	enrollment := models.Enrollment{UserID: bob.ID, StudyID: study.ID, Status: models.EnrollmentPending, CreatedAt: utils.NowKST()}
	db.DB.Create(&enrollment)

	w := doPOST(r, fmt.Sprintf("/enrollment/%d/reject", enrollment.ID), nil, aliceCookies)
	if w.Code != http.StatusFound {
		t.Fatalf("reject: expected redirect, got %d", w.Code)
	}
	var reread models.Enrollment
	db.DB.First(&reread, enrollment.ID)
	if reread.Status != models.EnrollmentRejected {
		t.Errorf("expected rejected, got %s", reread.Status)
	}

	w = doPOST(r, "/enrollment/9999/accept", nil, aliceCookies)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing enrollment: expected 404, got %d", w.Code)
	}
}

func TestOwnerSeesPendingOnDetail(t *testing.T) {
	r := setupServer(t)
	aliceCookies := signupAndLogin(t, r, "alice", "앨리스", "a@x.com")
	signup(t, r, "bob", "밥", "b@x.com", "pass1234")
	alice := userByLoginID(t, "alice")
	bob := userByLoginID(t, "bob")

	study := seedStudy(t, alice, "Rust 스터디", utils.NowKST())
	db.DB.Create(&models.Enrollment{UserID: bob.ID, StudyID: study.ID, Status: models.EnrollmentPending, CreatedAt: utils.NowKST()})

	w := doGET(r, fmt.Sprintf("/study/%d", study.ID), aliceCookies)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "pending=1") {
		t.Errorf("owner should see the pending request: %s", w.Body.String())
	}

	// Anonymous viewers don't see applications
	w = doGET(r, fmt.Sprintf("/study/%d", study.ID), nil)
	if strings.Contains(w.Body.String(), "pending=1") {
		t.Errorf("anonymous viewer saw pending requests: %s", w.Body.String())
	}
}

func TestDecisionWriteGuardedByStatus(t *testing.T) {
	r := setupServer(t)
	signupAndLogin(t, r, "alice", "앨리스", "a@x.com")
	signup(t, r, "bob", "밥", "b@x.com", "pass1234")
	alice := userByLoginID(t, "alice")
	bob := userByLoginID(t, "bob")

	study := seedStudy(t, alice, "Rust 스터디", utils.NowKST())
	enrollment := models.Enrollment{UserID: bob.ID, StudyID: study.ID, Status: models.EnrollmentPending, CreatedAt: utils.NowKST()}
	db.DB.Create(&enrollment)

	// Two decisions that both read the request while it was still pending:
	// only the first write may land, the second matches zero rows.
	first := db.DB.Model(&models.Enrollment{}).
		Where("id = ? AND status = ?", enrollment.ID, models.EnrollmentPending).
		Update("status", models.EnrollmentAccepted)
	if first.Error != nil || first.RowsAffected != 1 {
		t.Fatalf("first decision: affected=%d err=%v", first.RowsAffected, first.Error)
	}

	second := db.DB.Model(&models.Enrollment{}).
		Where("id = ? AND status = ?", enrollment.ID, models.EnrollmentPending).
		Update("status", models.EnrollmentRejected)
	if second.Error != nil {
		t.Fatalf("second decision: %v", second.Error)
	}
	if second.RowsAffected != 0 {
		t.Errorf("second decision overwrote a settled request (affected=%d)", second.RowsAffected)
	}

	var reread models.Enrollment
	db.DB.First(&reread, enrollment.ID)
	if reread.Status != models.EnrollmentAccepted {
		t.Errorf("expected accepted to stick, got %s", reread.Status)
	}
}
