package notify

import "testing"

func TestDecideDisabledAlwaysSuppresses(t *testing.T) {
	pref := Preference{ChargeThreshold: -1}

	for _, amount := range []int64{0, 1, 500, 1000000} {
		action, next := Decide(pref, Charge{Amount: amount, Currency: "usd"})
		if action.Kind != ActionSuppress {
			t.Errorf("amount %d: kind = %v, want suppress", amount, action.Kind)
		}
		if next.AccumulatedCharge != 0 {
			t.Errorf("amount %d: accumulated = %d, want 0", amount, next.AccumulatedCharge)
		}
	}
}

func TestDecideEveryEventNeverAccumulates(t *testing.T) {
	pref := Preference{ChargeThreshold: 0}

	for _, amount := range []int64{100, 250, 999} {
		action, next := Decide(pref, Charge{Amount: amount, Currency: "usd", Description: "coffee"})
		if action.Kind != ActionNotifyCharge {
			t.Fatalf("amount %d: kind = %v, want single charge", amount, action.Kind)
		}
		if action.Amount != amount {
			t.Errorf("action amount = %d, want %d", action.Amount, amount)
		}
		if action.Description != "coffee" {
			t.Errorf("description = %q, want %q", action.Description, "coffee")
		}
		if next.AccumulatedCharge != 0 {
			t.Errorf("accumulated = %d, want 0", next.AccumulatedCharge)
		}
		pref = next
	}
}

func TestDecideBatchSequence(t *testing.T) {
	// Threshold 500, charges 200 + 250 + 100: the first two accumulate,
	// the third crosses the threshold and emits the full total.
	pref := Preference{ChargeThreshold: 500}

	action, pref := Decide(pref, Charge{Amount: 200, Currency: "usd"})
	if action.Kind != ActionNone {
		t.Fatalf("event 1: kind = %v, want none", action.Kind)
	}
	if pref.AccumulatedCharge != 200 {
		t.Fatalf("event 1: accumulated = %d, want 200", pref.AccumulatedCharge)
	}

	action, pref = Decide(pref, Charge{Amount: 250, Currency: "usd"})
	if action.Kind != ActionNone {
		t.Fatalf("event 2: kind = %v, want none", action.Kind)
	}
	if pref.AccumulatedCharge != 450 {
		t.Fatalf("event 2: accumulated = %d, want 450", pref.AccumulatedCharge)
	}

	action, pref = Decide(pref, Charge{Amount: 100, Currency: "usd"})
	if action.Kind != ActionNotifyChargeBatch {
		t.Fatalf("event 3: kind = %v, want batch", action.Kind)
	}
	if action.Amount != 550 {
		t.Errorf("batch amount = %d, want 550", action.Amount)
	}
	if action.Currency != "usd" {
		t.Errorf("batch currency = %q, want usd", action.Currency)
	}
	if pref.AccumulatedCharge != 0 {
		t.Errorf("accumulated after batch = %d, want 0", pref.AccumulatedCharge)
	}
}

func TestDecideBatchExactThreshold(t *testing.T) {
	pref := Preference{ChargeThreshold: 500}

	action, next := Decide(pref, Charge{Amount: 500, Currency: "usd"})
	if action.Kind != ActionNotifyChargeBatch {
		t.Fatalf("kind = %v, want batch", action.Kind)
	}
	if action.Amount != 500 {
		t.Errorf("amount = %d, want 500", action.Amount)
	}
	if next.AccumulatedCharge != 0 {
		t.Errorf("accumulated = %d, want 0", next.AccumulatedCharge)
	}
}

func TestDecideIsPure(t *testing.T) {
	pref := Preference{ChargeThreshold: 500, AccumulatedCharge: 100}

	_, _ = Decide(pref, Charge{Amount: 50, Currency: "usd"})
	if pref.AccumulatedCharge != 100 {
		t.Errorf("input preference mutated: accumulated = %d, want 100", pref.AccumulatedCharge)
	}
}

func TestDecideTransfer(t *testing.T) {
	tests := []struct {
		name      string
		threshold int64
		want      ActionKind
	}{
		{"disabled", -1, ActionSuppress},
		{"zero", 0, ActionNotifyTransfer},
		{"positive threshold still sends every transfer", 500, ActionNotifyTransfer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pref := Preference{TransferThreshold: tt.threshold}
			action := DecideTransfer(pref, Transfer{Amount: 750, Currency: "usd"})
			if action.Kind != tt.want {
				t.Errorf("kind = %v, want %v", action.Kind, tt.want)
			}
			if tt.want == ActionNotifyTransfer && action.Amount != 750 {
				t.Errorf("amount = %d, want 750", action.Amount)
			}
		})
	}
}

func TestDecideTransferIgnoresChargeAccumulator(t *testing.T) {
	pref := Preference{ChargeThreshold: 500, TransferThreshold: 0, AccumulatedCharge: 450}

	action := DecideTransfer(pref, Transfer{Amount: 1000, Currency: "usd"})
	if action.Kind != ActionNotifyTransfer {
		t.Fatalf("kind = %v, want transfer", action.Kind)
	}
	if pref.AccumulatedCharge != 450 {
		t.Errorf("accumulated = %d, want 450", pref.AccumulatedCharge)
	}
}

func TestChargePolicyRoundTrip(t *testing.T) {
	for _, v := range []int64{-1, 0, 1, 500, 100000} {
		if got := DecodeChargePolicy(v).Encode(); got != v {
			t.Errorf("round trip of %d = %d", v, got)
		}
	}
}

func TestDecodeChargePolicy(t *testing.T) {
	tests := []struct {
		in        int64
		mode      ChargeMode
		threshold int64
	}{
		{-1, ChargeDisabled, 0},
		{-5, ChargeDisabled, 0},
		{0, ChargeEveryEvent, 0},
		{500, ChargeBatch, 500},
	}

	for _, tt := range tests {
		p := DecodeChargePolicy(tt.in)
		if p.Mode != tt.mode || p.Threshold != tt.threshold {
			t.Errorf("DecodeChargePolicy(%d) = %+v, want mode %v threshold %d", tt.in, p, tt.mode, tt.threshold)
		}
	}
}
