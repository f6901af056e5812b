package cameratrap

// This package defines common methods and operations for cataloging field-camera media (images and video) in to a geospatially indexed record store and for reviewing and annotating those records against a controlled species vocabulary. Common operations include: ingesting folders of media, reviewing and annotating records, exporting annotated records as GeoJSON Feature documents and splitting videos in to still frames.
