package state_test

import (
	"repairx/domain/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("RepairMachine", func() {
	Describe("FindState", func() {
		It("should find every registered state by name", func() {
			for _, s := range state.JobStates {
				found, ok := state.RepairMachine.FindState(s.Name)
				Expect(ok).To(BeTrue())
				Expect(found).To(Equal(s))
			}
		})
		It("should not find unknown state", func() {
			_, ok := state.RepairMachine.FindState("UNKNOWN")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("IsTerminal", func() {
		It("should only treat DELIVERED and CANCELLED as terminal", func() {
			Expect(state.StateDelivered.IsTerminal()).To(BeTrue())
			Expect(state.StateCancelled.IsTerminal()).To(BeTrue())
			for _, s := range state.JobStates {
				if s == state.StateDelivered || s == state.StateCancelled {
					continue
				}
				Expect(s.IsTerminal()).To(BeFalse())
			}
		})
	})

	Describe("FindTransition", func() {
		It("should find the primary repair path edges", func() {
			path := []state.State{
				state.StateCreated, state.StateInDiagnosis, state.StateAwaitingApproval,
				state.StateApproved, state.StateInProgress, state.StateTesting,
				state.StateQualityCheck, state.StateCompleted, state.StateCustomerApproved,
				state.StateDelivered,
			}
			for i := 0; i < len(path)-1; i++ {
				transition, ok := state.RepairMachine.FindTransition(path[i].Name, path[i+1].Name)
				Expect(ok).To(BeTrue())
				Expect(transition.From).To(Equal(path[i]))
				Expect(transition.To).To(Equal(path[i+1]))
			}
		})
		It("should find the parts loop edges", func() {
			orderParts, ok := state.RepairMachine.FindTransition("IN_PROGRESS", "PARTS_ORDERED")
			Expect(ok).To(BeTrue())
			Expect(orderParts.Name).To(Equal("order-parts"))
			Expect(orderParts.RequiredFields).To(Equal([]string{"partsOrderRef"}))

			receiveParts, ok := state.RepairMachine.FindTransition("PARTS_ORDERED", "IN_PROGRESS")
			Expect(ok).To(BeTrue())
			Expect(receiveParts.Name).To(Equal("receive-parts"))
			Expect(receiveParts.RequiredFields).To(Equal([]string{"partsReceived"}))
		})
		It("should not allow skipping a step", func() {
			_, ok := state.RepairMachine.FindTransition("IN_PROGRESS", "QUALITY_CHECK")
			Expect(ok).To(BeFalse())
			_, ok = state.RepairMachine.FindTransition("CREATED", "APPROVED")
			Expect(ok).To(BeFalse())
		})
		It("should not leave terminal states", func() {
			for _, s := range state.JobStates {
				if !s.IsTerminal() {
					continue
				}
				for _, to := range state.JobStates {
					_, ok := state.RepairMachine.FindTransition(s.Name, to.Name)
					Expect(ok).To(BeFalse())
				}
			}
		})
	})

	Describe("AvailableTransitions", func() {
		It("should derive cancel and dispute edges for every non-terminal state", func() {
			for _, s := range state.JobStates {
				if s.IsTerminal() {
					Expect(len(state.RepairMachine.AvailableTransitions(s.Name))).To(BeZero())
					continue
				}
				_, ok := state.RepairMachine.FindTransition(s.Name, state.StateCancelled.Name)
				Expect(ok).To(BeTrue())
				if s != state.StateDisputed {
					_, ok = state.RepairMachine.FindTransition(s.Name, state.StateDisputed.Name)
					Expect(ok).To(BeTrue())
				}
			}
		})
		It("should derive reopen edges from DISPUTED to every non-terminal working state", func() {
			available := state.RepairMachine.AvailableTransitions(state.StateDisputed.Name)
			reopenTargets := map[string]bool{}
			for _, t := range available {
				if t.Name == "reopen" {
					reopenTargets[t.To.Name] = true
				}
			}
			// every state except terminals and DISPUTED itself
			Expect(len(reopenTargets)).To(Equal(10))
			Expect(reopenTargets["DELIVERED"]).To(BeFalse())
			Expect(reopenTargets["CANCELLED"]).To(BeFalse())
			Expect(reopenTargets["DISPUTED"]).To(BeFalse())
		})
		It("should return empty slice for unknown state", func() {
			Expect(len(state.RepairMachine.AvailableTransitions("UNKNOWN"))).To(BeZero())
		})
	})

	Describe("Permit", func() {
		It("should grant every edge to at least one role", func() {
			for _, t := range state.RepairMachine.Transitions {
				Expect(len(t.Roles)).ToNot(BeZero(), "edge %s %s -> %s", t.Name, t.From.Name, t.To.Name)
			}
		})
		It("should reserve quote approval and acceptance to the customer", func() {
			approve, ok := state.RepairMachine.FindTransition("AWAITING_APPROVAL", "APPROVED")
			Expect(ok).To(BeTrue())
			Expect(approve.Permit(state.RoleCustomer)).To(BeTrue())
			Expect(approve.Permit(state.RoleSaasAdmin)).To(BeTrue())
			Expect(approve.Permit(state.RoleTechnician)).To(BeFalse())
			Expect(approve.Permit(state.RoleOrgManager)).To(BeFalse())
			Expect(approve.Permit(state.RoleOrgOwner)).To(BeFalse())

			accept, ok := state.RepairMachine.FindTransition("COMPLETED", "CUSTOMER_APPROVED")
			Expect(ok).To(BeTrue())
			Expect(accept.Permit(state.RoleCustomer)).To(BeTrue())
			Expect(accept.Permit(state.RoleTechnician)).To(BeFalse())
		})
		It("should reserve completion to managers and up", func() {
			complete, ok := state.RepairMachine.FindTransition("QUALITY_CHECK", "COMPLETED")
			Expect(ok).To(BeTrue())
			Expect(complete.Permit(state.RoleTechnician)).To(BeFalse())
			Expect(complete.Permit(state.RoleCustomer)).To(BeFalse())
			Expect(complete.Permit(state.RoleOrgManager)).To(BeTrue())
			Expect(complete.Permit(state.RoleOrgOwner)).To(BeTrue())
			Expect(complete.Permit(state.RoleSaasAdmin)).To(BeTrue())
		})
		It("should let the customer cancel only before work is committed", func() {
			earlyCancel, ok := state.RepairMachine.FindTransition("CREATED", "CANCELLED")
			Expect(ok).To(BeTrue())
			Expect(earlyCancel.Permit(state.RoleCustomer)).To(BeTrue())

			quoteCancel, ok := state.RepairMachine.FindTransition("AWAITING_APPROVAL", "CANCELLED")
			Expect(ok).To(BeTrue())
			Expect(quoteCancel.Permit(state.RoleCustomer)).To(BeTrue())

			lateCancel, ok := state.RepairMachine.FindTransition("IN_PROGRESS", "CANCELLED")
			Expect(ok).To(BeTrue())
			Expect(lateCancel.Permit(state.RoleCustomer)).To(BeFalse())
			Expect(lateCancel.Permit(state.RoleOrgManager)).To(BeFalse())
			Expect(lateCancel.Permit(state.RoleOrgOwner)).To(BeTrue())
			Expect(lateCancel.Permit(state.RoleSaasAdmin)).To(BeTrue())
		})
		It("should reserve reopen to managers and up", func() {
			reopen, ok := state.RepairMachine.FindTransition("DISPUTED", "TESTING")
			Expect(ok).To(BeTrue())
			Expect(reopen.Permit(state.RoleCustomer)).To(BeFalse())
			Expect(reopen.Permit(state.RoleTechnician)).To(BeFalse())
			Expect(reopen.Permit(state.RoleOrgManager)).To(BeTrue())
		})
	})

	Describe("Notifications", func() {
		It("should carry customer notifications on the customer facing edges", func() {
			cases := []struct {
				from, to string
				want     state.Notification
			}{
				{"CREATED", "IN_DIAGNOSIS", state.Notification{Recipient: state.RoleCustomer, Template: "diagnosis-started"}},
				{"IN_DIAGNOSIS", "AWAITING_APPROVAL", state.Notification{Recipient: state.RoleCustomer, Template: "quote-approval-requested"}},
				{"QUALITY_CHECK", "COMPLETED", state.Notification{Recipient: state.RoleCustomer, Template: "repair-completed"}},
				{"CUSTOMER_APPROVED", "DELIVERED", state.Notification{Recipient: state.RoleCustomer, Template: "delivery-receipt"}},
			}
			for _, c := range cases {
				transition, ok := state.RepairMachine.FindTransition(c.from, c.to)
				Expect(ok).To(BeTrue(), c.from+" -> "+c.to)
				Expect(transition.Notifications).To(ContainElement(c.want), c.from+" -> "+c.to)
			}
		})
		It("should notify both parties on cancellation", func() {
			cancel, ok := state.RepairMachine.FindTransition("CREATED", "CANCELLED")
			Expect(ok).To(BeTrue())
			Expect(cancel.Notifications).To(ContainElement(state.Notification{Recipient: state.RoleCustomer, Template: "job-cancelled"}))
			Expect(cancel.Notifications).To(ContainElement(state.Notification{Recipient: state.RoleOrgManager, Template: "job-cancelled"}))
		})
	})
})
