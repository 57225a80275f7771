package common

// SuperuserRole is the only role granted to the temporary account.
const SuperuserRole = "superuser"

// UsernamePrefix marks every account created by runas so that an orphan left
// behind by an interrupted run can still be recognized.
const UsernamePrefix = "enrollment_autogenerated_"

// DefaultPasswordLength is the length of the temporary account password.
const DefaultPasswordLength = 14

// DefaultHealthRetries bounds the number of health probe retries.
const DefaultHealthRetries = 5
