package policy

// TestPolicyDocument is a known-good policy document tests can mutate to
// exercise validation failures.
const TestPolicyDocument = devPolicy
