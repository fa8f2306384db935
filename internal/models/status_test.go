package models

import (
	"testing"
)

func TestTruckTransitions(t *testing.T) {
	if !TruckStatusResting.CanTransition(TruckStatusActive) {
		t.Fatalf("expected resting -> active allowed")
	}
	if !TruckStatusActive.CanTransition(TruckStatusResting) {
		t.Fatalf("expected active -> resting allowed")
	}
	if !TruckStatusResting.CanTransition(TruckStatusMaintenance) {
		t.Fatalf("expected resting -> maintenance allowed")
	}
	if TruckStatusActive.CanTransition(TruckStatusMaintenance) {
		t.Fatalf("expected active -> maintenance not allowed")
	}
	if TruckStatusMaintenance.CanTransition(TruckStatusActive) {
		t.Fatalf("expected maintenance -> active not allowed")
	}
}

func TestOperatorTransitions(t *testing.T) {
	if !OperatorStatusAvailable.CanTransition(OperatorStatusWorking) {
		t.Fatalf("expected available -> working allowed")
	}
	if !OperatorStatusWorking.CanTransition(OperatorStatusAvailable) {
		t.Fatalf("expected working -> available allowed")
	}
	if OperatorStatusWorking.CanTransition(OperatorStatusResting) {
		t.Fatalf("expected working -> resting not allowed")
	}
	if OperatorStatusResting.CanTransition(OperatorStatusWorking) {
		t.Fatalf("expected resting -> working not allowed")
	}
	if !OperatorStatusOffline.CanTransition(OperatorStatusWorking) {
		t.Fatalf("expected offline -> working allowed")
	}
}

func TestCycleTransitionsTerminal(t *testing.T) {
	if !CycleStatusInProgress.CanTransition(CycleStatusCompleted) {
		t.Fatalf("expected in_progress -> completed allowed")
	}
	if !CycleStatusInProgress.CanTransition(CycleStatusCancelled) {
		t.Fatalf("expected in_progress -> cancelled allowed")
	}
	if CycleStatusCompleted.CanTransition(CycleStatusInProgress) {
		t.Fatalf("expected completed -> in_progress not allowed")
	}
	if CycleStatusCancelled.CanTransition(CycleStatusCompleted) {
		t.Fatalf("expected cancelled -> completed not allowed")
	}
	// Переход в тот же статус разрешен
	if !CycleStatusCompleted.CanTransition(CycleStatusCompleted) {
		t.Fatalf("expected completed -> completed allowed")
	}
}
