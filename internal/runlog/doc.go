// Package runlog records what each postmortem run produced.
//
// One JSON object per packaged recipient is appended to
//
//	$XDG_DATA_HOME/postmortem/log.jsonl
//
// Each entry holds the time, a run id shared by every entry of one
// invocation, the recipient, how many accounts went into the packet, a
// BLAKE2b digest of the plaintext account text, the archive path and
// whether it was mailed. The digest lets a later run tell whether a
// recipient's packet changed without keeping the plaintext around.
//
// Logging is best-effort. A run never fails because the log could not be
// written. Malformed lines are skipped when reading to tolerate partial
// writes.
package runlog
