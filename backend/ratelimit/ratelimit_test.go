package ratelimit

import "testing"

func TestPerIP_BurstThenDeny(t *testing.T) {
	rl := NewPerIP(2) // burst of 4

	allowed := 0
	for i := 0; i < 10; i++ {
		if rl.Allow("10.0.0.1") {
			allowed++
		}
	}
	if allowed != 4 {
		t.Errorf("expected 4 allowed from the initial burst, got %d", allowed)
	}
}

func TestPerIP_IsolatesAddresses(t *testing.T) {
	rl := NewPerIP(1)

	for i := 0; i < 5; i++ {
		rl.Allow("10.0.0.1")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("exhausted address should be denied")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("fresh address should get its own bucket")
	}
}
