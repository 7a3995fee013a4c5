// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package service contains the workflow logic between the HTTP handlers
and the chain/store boundaries.

# Vote Submission

VoteService.SubmitVote runs the core workflow in strict order: input
validation, on-chain session check, credential reservation, transaction
submission, receipt wait, credential commit. The reservation (an atomic
unused -> pending transition) is taken before the submission and
released on definitive failure, so a credential is never burned by a
failed transaction, and two concurrent requests for the same voter
cannot both reach the chain.

A confirmation timeout leaves the reservation in place: the transaction
may still land, and releasing immediately could let the voter be
counted twice. The Reconciler resolves these by checking the attached
transaction's receipt.

# Session Lifecycle

SessionService creates sessions and releases results. Both record
optimistically from the submitted hash by default, preserving the
original behavior; the ConfirmBeforeRecord flag waits for a success
receipt first.

# Audit

AuditLog.Record is best-effort and never fails the calling workflow.
*/
package service
