package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/coursecatalog/backend/core/course"
	"github.com/coursecatalog/backend/core/review"
)

func (cli *commandLine) seedReviewsCommand() *cobra.Command {
	var (
		courses []int
		rating  int
		text    string
	)
	cmd := &cobra.Command{
		Use:   "seedreviews",
		Short: "Add a review from every user to the given courses",
		Long: `Add a review from every user to the given courses.

Users who already reviewed a course are skipped, the course ratings are kept up to date.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return cli.seedReviews(courses, rating, text)
		},
	}
	cmd.Flags().IntSliceVar(&courses, "course", nil, "The course ids (repeatable)")
	cmd.Flags().IntVar(&rating, "rating", 4, "The rating of every review, 1 to 5")
	cmd.Flags().StringVar(&text, "text", "Great course!", "The review text")
	_ = cmd.MarkFlagRequired("course")
	return cmd
}

func (cli *commandLine) seedReviews(courseIDs []int, rating int, text string) error {
	ctx := context.Background()
	users, err := cli.usrSvc.QueryAll(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return errors.New("no users found, create one with adduser first")
	}

	for _, crsID := range courseIDs {
		var added, skipped int
		for _, usr := range users {
			nr := review.NewReview{Rating: rating, Text: fmt.Sprintf("%s (%s)", text, usr.FullName())}
			_, err = cli.revSvc.Submit(ctx, crsID, usr.ID, nr)
			switch errors.Cause(err) {
			case nil:
				added++
			case review.ErrAlreadyReviewed:
				skipped++
			case course.ErrNotFound:
				return errors.Errorf("course %d not found", crsID)
			default:
				return cli.describe(err)
			}
		}
		cli.printf("course %d: %d review(s) added, %d skipped\n", crsID, added, skipped)
	}
	return nil
}
