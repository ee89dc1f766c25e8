package matter

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusOpen, StatusOnHold, true},
		{StatusOpen, StatusClosed, true},
		{StatusOnHold, StatusOpen, true},
		{StatusClosed, StatusOnHold, true},
		{StatusClosed, StatusOpen, false},
		{StatusOpen, StatusOpen, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCreateRequestValidate(t *testing.T) {
	valid := CreateRequest{
		ClientID:     "c-1",
		Title:        "Series B financing",
		PracticeArea: AreaCorporate,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	badArea := valid
	badArea.PracticeArea = PracticeArea("maritime")
	if err := badArea.Validate(); err == nil {
		t.Error("Validate() = nil for unknown practice area, want error")
	}

	noClient := valid
	noClient.ClientID = ""
	if err := noClient.Validate(); err == nil {
		t.Error("Validate() = nil for missing client_id, want error")
	}
}
