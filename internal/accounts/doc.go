// Package accounts exposes password manager accounts to postmortem.
//
// The rest of the program sees accounts only through the Account interface:
// names, ordered fields, single and multi-valued lookups, a secret flag on
// every value and the store's own serialization for re-import. Store is the
// collection of accounts.
//
// DirStore is the store implementation: a directory of TOML files, one
// account per file, for example
//
//	name = "chase"
//	aliases = ["bank"]
//	class = "BankAccount"
//	desc = "Joint checking account"
//	postmortem_recipients = "family"
//	estimated_value = "$12,000"
//	username = "jdoe"
//
//	[passcode]
//	value = "7Xs7sXAd"
//	secret = true
//
//	[[questions]]
//	description = "first pet"
//	value = "fluffy"
//	secret = true
//
// Field order follows the file.
package accounts
