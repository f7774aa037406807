// Package notepolicy is the access decision core for counseling sessions
// and their notes.
//
// Every capability follows the same template:
//
//	owner escape-hatch → share escape-hatch → counselor-role escape-hatch
//	→ subscription fallback
//
// with capability-specific refinements (the coverage/private-note rule being
// the important one). Decisions are pure functions of freshly read data:
// there is no cached or in-process shared state, so concurrent checks for
// different actors and sessions are fully independent.
//
// Identity is threaded explicitly: every function takes the actor and the
// relevant ids as parameters, and nothing is read from ambient request state.
package notepolicy

import (
	"context"

	"github.com/dalemusser/counselhub/internal/app/policy/rolepolicy"
	"github.com/dalemusser/counselhub/internal/app/policy/sharepolicy"
	"github.com/dalemusser/counselhub/internal/app/store/counselsessions"
	"github.com/dalemusser/counselhub/internal/app/store/entitlements"
	noteStore "github.com/dalemusser/counselhub/internal/app/store/notes"
	"github.com/dalemusser/counselhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Actor identifies the requesting user for policy evaluation. Email is only
// used to match shares addressed by email; it may be empty.
type Actor struct {
	ID    primitive.ObjectID
	Email string
}

// ownsSession reports whether the actor owns the session. Anonymous
// sessions (nil member) have no owner.
func ownsSession(actor Actor, sess *models.CounselSession) bool {
	return sess.MemberID != nil && *sess.MemberID == actor.ID
}

// memberRole resolves the actor's counselor relationship to the session's
// owning member. Sessions without an owner have no counselor relationships.
func memberRole(ctx context.Context, db *mongo.Database, actor Actor, sess *models.CounselSession, orgID primitive.ObjectID) (rolepolicy.Relationship, error) {
	if sess.MemberID == nil {
		return rolepolicy.None, nil
	}
	return rolepolicy.Resolve(ctx, db, actor.ID, *sess.MemberID, orgID)
}

// CanAccessSession reports whether the actor may view the session at all:
// owner, any redeemable share, or any counselor relationship. Used for
// coarse gating; a missing session yields false, not an error.
func CanAccessSession(ctx context.Context, db *mongo.Database, actor Actor, sessionID, orgID primitive.ObjectID) (bool, error) {
	sess, err := counselsessions.New(db).GetByID(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if sess == nil {
		return false, nil
	}

	if ownsSession(actor, sess) {
		return true, nil
	}

	share, err := sharepolicy.Resolve(ctx, db, actor.ID, actor.Email, sessionID)
	if err != nil {
		return false, err
	}
	if share.HasAccess {
		return true, nil
	}

	rel, err := memberRole(ctx, db, actor, sess, orgID)
	if err != nil {
		return false, err
	}
	return rel.HasAccess(), nil
}

// CanCreateNote decides whether the actor may attach a note (private or
// public) to the session. A nil return means allowed.
//
//  1. The session owner may always create notes, including private ones,
//     provided they hold history access; share and counselor paths are
//     never consulted for the owner.
//  2. A write-capable share allows creation, except that an actor whose
//     counselor relationship resolves to coverage may never create a
//     private note, share or no share.
//  3. An assigned or coverage counselor may create notes; coverage plus
//     private is refused.
//  4. Everyone else needs history access (subscription).
func CanCreateNote(ctx context.Context, db *mongo.Database, actor Actor, sessionID, orgID primitive.ObjectID, isPrivate bool) error {
	sess, err := counselsessions.New(db).GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrSessionNotFound
	}

	if ownsSession(actor, sess) {
		ok, err := entitlements.New(db).HasHistoryAccess(ctx, actor.ID)
		if err != nil {
			return err
		}
		if !ok {
			return Denied(ReasonSubscriptionRequired)
		}
		return nil
	}

	share, err := sharepolicy.Resolve(ctx, db, actor.ID, actor.Email, sessionID)
	if err != nil {
		return err
	}
	if share.WritableNotes() {
		if isPrivate {
			rel, err := memberRole(ctx, db, actor, sess, orgID)
			if err != nil {
				return err
			}
			if rel == rolepolicy.Coverage {
				return Denied(ReasonCoveragePrivate)
			}
		}
		return nil
	}

	rel, err := memberRole(ctx, db, actor, sess, orgID)
	if err != nil {
		return err
	}
	if rel == rolepolicy.Coverage && isPrivate {
		return Denied(ReasonCoveragePrivate)
	}
	if rel.HasAccess() {
		return nil
	}

	ok, err := entitlements.New(db).HasHistoryAccess(ctx, actor.ID)
	if err != nil {
		return err
	}
	if !ok {
		return Denied(ReasonNotesAccessRequired)
	}
	return nil
}

// CanAccessNotes decides whether the actor may read the session's note
// list. Same shape as CanCreateNote without the private-note refinement;
// per-note filtering happens in CanViewNote.
func CanAccessNotes(ctx context.Context, db *mongo.Database, actor Actor, sessionID, orgID primitive.ObjectID) error {
	sess, err := counselsessions.New(db).GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrSessionNotFound
	}

	if ownsSession(actor, sess) {
		ok, err := entitlements.New(db).HasHistoryAccess(ctx, actor.ID)
		if err != nil {
			return err
		}
		if !ok {
			return Denied(ReasonSubscriptionRequired)
		}
		return nil
	}

	share, err := sharepolicy.Resolve(ctx, db, actor.ID, actor.Email, sessionID)
	if err != nil {
		return err
	}
	if share.WritableNotes() {
		return nil
	}

	rel, err := memberRole(ctx, db, actor, sess, orgID)
	if err != nil {
		return err
	}
	if rel.HasAccess() {
		return nil
	}

	ok, err := entitlements.New(db).HasHistoryAccess(ctx, actor.ID)
	if err != nil {
		return err
	}
	if !ok {
		return Denied(ReasonNotesAccessRequired)
	}
	return nil
}

// CanViewNote is the per-note filtering predicate applied over the full
// list fetched from storage. Visibility of the list itself is gated
// upstream by CanAccessNotes, so non-private notes pass unconditionally.
//
// Private notes are visible to their author; counselor-authored private
// notes are additionally visible to the session's owning member; and
// assigned counselors see all private notes on their member's sessions.
// Coverage counselors never see another party's private notes.
func CanViewNote(ctx context.Context, db *mongo.Database, actor Actor, note models.SessionNote, orgID primitive.ObjectID) (bool, error) {
	if !note.IsPrivate {
		return true, nil
	}
	if note.AuthorID == actor.ID {
		return true, nil
	}

	sess, err := counselsessions.New(db).GetByID(ctx, note.SessionID)
	if err != nil {
		return false, err
	}
	if sess == nil {
		return false, nil
	}

	if note.AuthorRole == models.AuthorRoleCounselor && ownsSession(actor, sess) {
		return true, nil
	}

	rel, err := memberRole(ctx, db, actor, sess, orgID)
	if err != nil {
		return false, err
	}
	return rel == rolepolicy.Assigned, nil
}

// CanEditNote checks that the note exists and the actor authored it,
// returning the note for the caller's use. Not-found and not-author are
// distinct error kinds.
func CanEditNote(ctx context.Context, db *mongo.Database, actor Actor, noteID primitive.ObjectID) (*models.SessionNote, error) {
	note, err := noteStore.New(db).GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrNoteNotFound
	}
	if note.AuthorID != actor.ID {
		return nil, Denied(ReasonNotNoteAuthor)
	}
	return note, nil
}

// CanDeleteNote has the same author-only rule as CanEditNote. Deletion
// itself is a soft transition handled by the note store.
func CanDeleteNote(ctx context.Context, db *mongo.Database, actor Actor, noteID primitive.ObjectID) (*models.SessionNote, error) {
	return CanEditNote(ctx, db, actor, noteID)
}

// CanMakeNotePrivate reports whether the actor may mark a note on this
// session private. Sessions with no owning member are treated permissively;
// otherwise only an assigned counselor qualifies; coverage counselors and
// unrelated actors cannot. Applied when an existing public note is flipped
// to private. CanCreateNote carries its own private-note rules, so this is
// not re-checked at creation.
func CanMakeNotePrivate(ctx context.Context, db *mongo.Database, actor Actor, sessionID, orgID primitive.ObjectID) (bool, error) {
	sess, err := counselsessions.New(db).GetByID(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if sess == nil {
		return false, nil
	}
	if sess.MemberID == nil {
		return true, nil
	}

	rel, err := rolepolicy.Resolve(ctx, db, actor.ID, *sess.MemberID, orgID)
	if err != nil {
		return false, err
	}
	return rel == rolepolicy.Assigned, nil
}

// DetermineAuthorRole resolves the role label stamped onto a note at
// creation: "user" for the session owner, "counselor" for any counselor
// relationship, "viewer" for everyone else. A missing session fails open to
// the least-privileged label rather than erroring.
func DetermineAuthorRole(ctx context.Context, db *mongo.Database, actor Actor, sessionID, orgID primitive.ObjectID) (string, error) {
	sess, err := counselsessions.New(db).GetByID(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if sess == nil {
		return models.AuthorRoleViewer, nil
	}

	if ownsSession(actor, sess) {
		return models.AuthorRoleUser, nil
	}

	rel, err := memberRole(ctx, db, actor, sess, orgID)
	if err != nil {
		return "", err
	}
	if rel.HasAccess() {
		return models.AuthorRoleCounselor, nil
	}
	return models.AuthorRoleViewer, nil
}
